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

// Package logging provides the CLI's zap logger and adapts it to the
// Logger interface the library packages accept.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the process logger. It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the process logger.
// This must be called before any command runs.
func SetLogger(l *zap.Logger) {
	logger = l
}

// New builds the CLI logger: development output with debug messages when
// verbose, warnings and errors only otherwise.
func New(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.DisableCaller = !verbose
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		cfg.EncoderConfig.TimeKey = ""
	}
	return cfg.Build()
}

// Adapter exposes a zap logger through the Warning and Debug methods the
// library packages log with.
type Adapter struct {
	sugar *zap.SugaredLogger
}

// NewAdapter wraps l.
func NewAdapter(l *zap.Logger) *Adapter {
	return &Adapter{sugar: l.Sugar()}
}

func (a *Adapter) Warning(format string, args ...any) {
	a.sugar.Warnf(format, args...)
}

func (a *Adapter) Debug(format string, args ...any) {
	a.sugar.Debugf(format, args...)
}
