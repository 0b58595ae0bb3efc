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

// Package output provides shared output utilities for ui5ify CLI commands.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"bennypowers.dev/ui5ify/fs"
)

// Format is a machine or human output format.
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case Text, JSON, YAML:
		return f, nil
	case "":
		return Text, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected text, json or yaml)", s)
	}
}

// Encode writes v to w as JSON or YAML.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case JSON:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("error marshaling YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("cannot encode %s output", format)
	}
}

// Emit writes data to the file named by the output flag, or to stdout.
func Emit(osfs fs.FileSystem, data []byte) error {
	if outputPath := viper.GetString("output"); outputPath != "" {
		return osfs.WriteFile(outputPath, data, 0644)
	}
	_, err := os.Stdout.Write(data)
	return err
}

// Terminal reports whether output goes to an interactive terminal.
func Terminal() bool {
	if viper.GetString("output") != "" {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Status classifies a line of text output.
type Status int

const (
	OK Status = iota
	Skipped
	Failed
)

var (
	labels = map[Status]string{
		OK:      "✓",
		Skipped: "-",
		Failed:  "✗",
	}
	styles = map[Status]lipgloss.Style{
		OK:      lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90")),
		Skipped: lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
		Failed:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	}
	summaryStyle = lipgloss.NewStyle().Bold(true)
)

// Printer renders human-readable lines, styled when writing to a terminal.
type Printer struct {
	buf    bytes.Buffer
	styled bool
}

// NewPrinter creates a Printer. Pass Terminal() for styled.
func NewPrinter(styled bool) *Printer {
	return &Printer{styled: styled}
}

// Line writes one status line: a marker, the subject, and optional detail.
func (p *Printer) Line(status Status, subject, detail string) {
	label := labels[status]
	if p.styled {
		label = styles[status].Render(label)
	}
	fmt.Fprintf(&p.buf, "%s %s", label, subject)
	if detail != "" {
		fmt.Fprintf(&p.buf, ": %s", detail)
	}
	p.buf.WriteByte('\n')
}

// Summary writes a closing line.
func (p *Printer) Summary(format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	if p.styled {
		text = summaryStyle.Render(text)
	}
	p.buf.WriteString(text)
	p.buf.WriteByte('\n')
}

// Write appends raw text.
func (p *Printer) Write(data []byte) (int, error) {
	return p.buf.Write(data)
}

// Bytes returns everything printed so far.
func (p *Printer) Bytes() []byte {
	return p.buf.Bytes()
}
