/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package config loads the project settings that shape generated modules.
package config

import (
	"errors"
	iofs "io/fs"
	"path/filepath"
	"strings"

	"bennypowers.dev/ui5ify/fs"
)

// FileName is the project configuration file, looked up in the project root.
const FileName = "ui5sk.properties"

// NamespaceKey marks the line that carries the namespace.
const NamespaceKey = "NAMESPACE"

// Config is the configuration of one project root.
type Config struct {
	Root      string
	Namespace string
}

// Loader reads Config values from a filesystem, optionally through a Cache.
type Loader struct {
	fs    fs.FileSystem
	cache Cache
}

// NewLoader creates a Loader reading from fsys.
func NewLoader(fsys fs.FileSystem) *Loader {
	return &Loader{fs: fsys}
}

// WithCache returns a copy of the loader that caches results per root.
// Pass nil to disable caching.
func (l *Loader) WithCache(c Cache) *Loader {
	return &Loader{fs: l.fs, cache: c}
}

// Load returns the configuration for root. A missing configuration file is
// not an error and yields an empty namespace.
func (l *Loader) Load(root string) (*Config, error) {
	if l.cache != nil {
		return l.cache.GetOrLoad(root, func() (*Config, error) {
			return l.read(root)
		})
	}
	return l.read(root)
}

func (l *Loader) read(root string) (*Config, error) {
	cfg := &Config{Root: root}
	data, err := l.fs.ReadFile(filepath.Join(root, FileName))
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	cfg.Namespace = ParseNamespace(string(data))
	return cfg, nil
}

// ParseNamespace scans properties content for the namespace. Any line
// containing NAMESPACE and an "=" sets it to all the text after the first
// "=", including further "=" characters;
// the last such line wins. Lines without "=" are ignored. Line breaks are
// removed, other whitespace is kept.
func ParseNamespace(content string) string {
	namespace := ""
	for line := range strings.SplitSeq(content, "\n") {
		if !strings.Contains(line, NamespaceKey) {
			continue
		}
		_, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		namespace = value
	}
	return strings.NewReplacer("\r", "", "\n", "").Replace(namespace)
}
