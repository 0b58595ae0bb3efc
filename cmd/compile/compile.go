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

// Package compile provides the compile command for ui5ify.
package compile

import (
	"fmt"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"bennypowers.dev/ui5ify/compile"
	"bennypowers.dev/ui5ify/fs"
	"bennypowers.dev/ui5ify/internal/logging"
	"bennypowers.dev/ui5ify/internal/output"
	"bennypowers.dev/ui5ify/internal/units"
	"bennypowers.dev/ui5ify/transform"
)

// Cmd is the compile command.
var Cmd = &cobra.Command{
	Use:   "compile [files...]",
	Short: "Compile ES module classes into UI5 modules",
	Long: `Compile ES module sources into sap.ui.define modules.

Each unit's imports become define dependencies, and its exported class
becomes a Base.extend call named after the namespace in ui5sk.properties.
Sources without import or export statements are copied unchanged.

Without file arguments, every file under the project root matching --glob
is compiled.`,
	Example: `  # Compile the project into dist/
  ui5ify compile --out-dir dist

  # Compile two files in place
  ui5ify compile webapp/Component.js webapp/controller/Main.controller.js

  # Preview changes as JSON
  ui5ify compile --out-dir dist --dry-run --format json`,
	RunE: run,
}

func init() {
	Cmd.Flags().String("glob", units.DefaultGlob, "Glob pattern, relative to the root, selecting units")
	Cmd.Flags().String("out-dir", "", "Directory receiving output (default: overwrite sources)")
	Cmd.Flags().String("define", transform.DefaultDefineFunction, "Function called to define modules")
	Cmd.Flags().String("indent", "\t", "One level of output indentation")
	Cmd.Flags().IntP("jobs", "j", 0, "Number of parallel workers (default: number of CPUs)")
	Cmd.Flags().Bool("dry-run", false, "Show what would change without writing files")
	Cmd.Flags().StringP("format", "f", "text", "Output format (text, json, yaml)")
}

// report is the machine-readable output of a batch.
type report struct {
	Results []compile.Result `json:"results" yaml:"results"`
	Stats   compile.Stats    `json:"stats" yaml:"stats"`
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

	outDir := viper.GetString("out-dir")
	sel, err := units.NewSelector(absRoot, viper.GetString("glob"), outDir)
	if err != nil {
		return err
	}
	files, err := sel.Files(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logging.Logger().Warn("no files matched", zap.String("glob", sel.Glob))
		return nil
	}

	parallel := viper.GetInt("jobs")
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}
	dryRun := viper.GetBool("dry-run")
	opts := compile.Options{
		Root:           absRoot,
		OutDir:         outDir,
		DefineFunction: viper.GetString("define"),
		Indent:         viper.GetString("indent"),
		Parallel:       parallel,
		DryRun:         dryRun,
		Logger:         logging.NewAdapter(logging.Logger()),
	}

	results, stats := compile.Collect(compile.Batch(cmd.Context(), osfs, files, opts), time.Now())
	slices.SortFunc(results, func(a, b compile.Result) int {
		return strings.Compare(a.File, b.File)
	})

	var data []byte
	if format == output.Text {
		data = textReport(absRoot, results, stats, dryRun)
	} else {
		var buf strings.Builder
		if err := output.Encode(&buf, format, report{Results: results, Stats: stats}); err != nil {
			return err
		}
		data = []byte(buf.String())
	}
	if err := output.Emit(osfs, data); err != nil {
		return err
	}

	if stats.Errors > 0 && stats.Errors == stats.Total {
		return fmt.Errorf("all %d files failed", stats.Errors)
	}
	return nil
}

func textReport(root string, results []compile.Result, stats compile.Stats, dryRun bool) []byte {
	p := output.NewPrinter(output.Terminal())
	for _, r := range results {
		subject := relative(root, r.File)
		switch {
		case r.Error != "":
			p.Line(output.Failed, subject, r.Error)
		case !r.Modified:
			continue
		case r.PassedThrough:
			p.Line(output.Skipped, subject, "no module syntax, copied unchanged")
		default:
			p.Line(output.OK, subject, relative(root, r.Output))
		}
	}

	verb := "Compiled"
	if dryRun {
		verb = "Dry run: would compile"
	}
	p.Summary("%s %d files (%d passed through, %d unchanged, %d errors) in %dms",
		verb, stats.Compiled, stats.PassedThrough, stats.Unchanged, stats.Errors, stats.Duration)
	return p.Bytes()
}

func relative(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}
