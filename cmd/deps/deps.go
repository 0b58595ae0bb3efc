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

// Package deps provides the deps command for ui5ify.
package deps

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/ui5ify/deps"
	"bennypowers.dev/ui5ify/fs"
	"bennypowers.dev/ui5ify/internal/output"
	"bennypowers.dev/ui5ify/internal/units"
)

// Cmd is the deps command.
var Cmd = &cobra.Command{
	Use:   "deps [files...]",
	Short: "List the define dependencies of each unit",
	Long: `List the dependencies each unit's define call would declare, without
writing anything. Dynamic imports and re-exports are listed separately
since the define call does not declare them.`,
	Example: `  # List dependencies of every unit
  ui5ify deps

  # As YAML
  ui5ify deps --format yaml webapp/Component.js`,
	RunE: run,
}

func init() {
	Cmd.Flags().String("glob", units.DefaultGlob, "Glob pattern, relative to the root, selecting units")
	Cmd.Flags().StringP("format", "f", "text", "Output format (text, json, yaml)")
}

func run(cmd *cobra.Command, args []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	osfs := fs.NewOSFileSystem()

	absRoot, err := filepath.Abs(viper.GetString("root"))
	if err != nil {
		return fmt.Errorf("invalid project root: %w", err)
	}
	format, err := output.ParseFormat(viper.GetString("format"))
	if err != nil {
		return err
	}
	sel, err := units.NewSelector(absRoot, viper.GetString("glob"))
	if err != nil {
		return err
	}
	files, err := sel.Files(args)
	if err != nil {
		return err
	}

	entries, err := deps.List(osfs, absRoot, files)
	if err != nil {
		return err
	}

	if format != output.Text {
		var buf strings.Builder
		if err := output.Encode(&buf, format, entries); err != nil {
			return err
		}
		return output.Emit(osfs, []byte(buf.String()))
	}

	p := output.NewPrinter(output.Terminal())
	for _, e := range entries {
		subject := e.File
		if rel, err := filepath.Rel(absRoot, e.File); err == nil {
			subject = filepath.ToSlash(rel)
		}
		switch {
		case e.Error != "":
			p.Line(output.Failed, subject, e.Error)
			continue
		case !e.Module:
			p.Line(output.Skipped, subject, "no module syntax")
			continue
		}
		p.Line(output.OK, subject, fmt.Sprintf("%d dependencies", len(e.Dependencies)))
		for _, d := range e.Dependencies {
			fmt.Fprintf(p, "    %s = %s\n", d.Name, d.Source)
		}
		for _, d := range e.Dynamic {
			fmt.Fprintf(p, "    (dynamic) %s\n", d)
		}
	}
	return output.Emit(osfs, p.Bytes())
}
