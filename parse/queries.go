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
package parse

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
	tsJavascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tsTypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

//go:embed queries/*/*.scm
var queryFiles embed.FS

// ErrUnsupportedFile is returned for paths whose extension has no grammar.
var ErrUnsupportedFile = errors.New("unsupported file type")

// Language selects the tree-sitter grammar a unit is parsed with.
type Language int

const (
	// TypeScript parses .js, .mjs, .cjs, .ts, .mts and .cts. The TypeScript
	// grammar is a superset of plain JavaScript modules.
	TypeScript Language = iota
	// TSX parses .tsx.
	TSX
	// JavaScript parses .jsx.
	JavaScript
)

func (l Language) String() string {
	switch l {
	case TypeScript:
		return "typescript"
	case TSX:
		return "tsx"
	case JavaScript:
		return "javascript"
	}
	return fmt.Sprintf("Language(%d)", int(l))
}

// queryDir is the directory under queries/ holding the language's .scm files.
func (l Language) queryDir() string {
	if l == JavaScript {
		return "javascript"
	}
	return "typescript"
}

// LanguageFor returns the grammar for a file path by extension.
func LanguageFor(p string) (Language, error) {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".js", ".mjs", ".cjs", ".ts", ".mts", ".cts":
		return TypeScript, nil
	case ".tsx":
		return TSX, nil
	case ".jsx":
		return JavaScript, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedFile, p)
}

// languages holds pre-initialized tree-sitter language grammars.
var languages = map[Language]*ts.Language{
	TypeScript: ts.NewLanguage(tsTypescript.LanguageTypescript()),
	TSX:        ts.NewLanguage(tsTypescript.LanguageTSX()),
	JavaScript: ts.NewLanguage(tsJavascript.Language()),
}

func newParserPool(lang Language) *sync.Pool {
	return &sync.Pool{
		New: func() any {
			parser := ts.NewParser()
			if err := parser.SetLanguage(languages[lang]); err != nil {
				panic("failed to set " + lang.String() + " language: " + err.Error())
			}
			return parser
		},
	}
}

// Parser pools for reuse, one per grammar.
var parserPools = map[Language]*sync.Pool{
	TypeScript: newParserPool(TypeScript),
	TSX:        newParserPool(TSX),
	JavaScript: newParserPool(JavaScript),
}

// getParser retrieves a parser for lang from its pool.
func getParser(lang Language) *ts.Parser {
	return parserPools[lang].Get().(*ts.Parser)
}

// putParser returns a parser to its pool.
func putParser(lang Language, p *ts.Parser) {
	p.Reset()
	parserPools[lang].Put(p)
}

// QueryManager manages tree-sitter queries per grammar.
type QueryManager struct {
	mu      sync.Mutex
	closed  bool
	queries map[Language]map[string]*ts.Query
}

// NewQueryManager creates a QueryManager with the named queries compiled for
// every grammar.
func NewQueryManager(names []string) (*QueryManager, error) {
	qm := &QueryManager{
		queries: make(map[Language]map[string]*ts.Query),
	}
	for _, lang := range []Language{TypeScript, TSX, JavaScript} {
		qm.queries[lang] = make(map[string]*ts.Query)
		for _, name := range names {
			if err := qm.loadQuery(lang, name); err != nil {
				qm.Close()
				return nil, err
			}
		}
	}
	return qm, nil
}

func (qm *QueryManager) loadQuery(lang Language, name string) error {
	queryPath := path.Join("queries", lang.queryDir(), name+".scm")
	data, err := queryFiles.ReadFile(queryPath)
	if err != nil {
		return fmt.Errorf("failed to read query %s: %w", queryPath, err)
	}

	query, qerr := ts.NewQuery(languages[lang], string(data))
	if qerr != nil {
		return fmt.Errorf("failed to parse query %s for %s: %w", name, lang, qerr)
	}
	qm.queries[lang][name] = query
	return nil
}

// Close releases all query resources. Safe to call multiple times.
func (qm *QueryManager) Close() {
	qm.mu.Lock()
	if qm.closed {
		qm.mu.Unlock()
		return
	}
	qm.closed = true
	all := qm.queries
	qm.queries = nil
	qm.mu.Unlock()

	for _, byName := range all {
		for _, q := range byName {
			q.Close()
		}
	}
}

// Query returns a query by grammar and name.
func (qm *QueryManager) Query(lang Language, name string) (*ts.Query, error) {
	q, ok := qm.queries[lang][name]
	if !ok {
		return nil, fmt.Errorf("query not found: %s/%s", lang, name)
	}
	return q, nil
}

// Global query manager singleton
var (
	globalQM     *QueryManager
	globalQMOnce sync.Once
	globalQMErr  error
)

// GetQueryManager returns the global query manager instance.
func GetQueryManager() (*QueryManager, error) {
	globalQMOnce.Do(func() {
		globalQM, globalQMErr = NewQueryManager([]string{"imports", "module"})
	})
	return globalQM, globalQMErr
}
