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

// Package watch provides the watch command for ui5ify.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"bennypowers.dev/ui5ify/compile"
	"bennypowers.dev/ui5ify/config"
	"bennypowers.dev/ui5ify/fs"
	"bennypowers.dev/ui5ify/internal/logging"
	"bennypowers.dev/ui5ify/internal/output"
	"bennypowers.dev/ui5ify/internal/units"
	"bennypowers.dev/ui5ify/transform"
	"bennypowers.dev/ui5ify/watch"
)

// Cmd is the watch command.
var Cmd = &cobra.Command{
	Use:   "watch",
	Short: "Compile the project, then recompile units as they change",
	Long: `Compile every unit under the project root, then watch the root and
recompile units when they change. Editing ui5sk.properties recompiles
every unit with the new namespace.`,
	Example: `  # Watch the project, writing into dist/
  ui5ify watch --out-dir dist`,
	RunE: run,
}

func init() {
	Cmd.Flags().String("glob", units.DefaultGlob, "Glob pattern, relative to the root, selecting units")
	Cmd.Flags().String("out-dir", "", "Directory receiving output (default: overwrite sources)")
	Cmd.Flags().String("define", transform.DefaultDefineFunction, "Function called to define modules")
	Cmd.Flags().String("indent", "\t", "One level of output indentation")
	Cmd.Flags().Duration("debounce", watch.DefaultDebounce, "Delay before recompiling after a change")
}

func run(cmd *cobra.Command, args []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	osfs := fs.NewOSFileSystem()
	log := logging.Logger()

	absRoot, err := filepath.Abs(viper.GetString("root"))
	if err != nil {
		return fmt.Errorf("invalid project root: %w", err)
	}
	outDir := viper.GetString("out-dir")
	sel, err := units.NewSelector(absRoot, viper.GetString("glob"), outDir)
	if err != nil {
		return err
	}

	cache := config.NewMemoryCache()
	opts := compile.Options{
		Root:           absRoot,
		OutDir:         outDir,
		DefineFunction: viper.GetString("define"),
		Indent:         viper.GetString("indent"),
		Loader:         config.NewLoader(osfs).WithCache(cache),
		Logger:         logging.NewAdapter(log),
	}

	files, err := sel.Files(nil)
	if err != nil {
		return err
	}
	_, stats := compile.Collect(compile.Batch(cmd.Context(), osfs, files, opts), time.Now())
	p := output.NewPrinter(output.Terminal())
	p.Summary("Compiled %d files (%d passed through, %d unchanged, %d errors) in %dms",
		stats.Compiled, stats.PassedThrough, stats.Unchanged, stats.Errors, stats.Duration)
	_, _ = os.Stdout.Write(p.Bytes())

	compiler, err := compile.NewCompiler(osfs, opts)
	if err != nil {
		return err
	}
	w, err := watch.New(compiler, cache, watch.Options{
		Match:    sel.Match,
		Files:    func() ([]string, error) { return sel.Files(nil) },
		OnResult: func(r compile.Result) { printResult(absRoot, r) },
		Debounce: viper.GetDuration("debounce"),
		Logger:   logging.NewAdapter(log),
	})
	if err != nil {
		return err
	}

	log.Info("watching for changes", zap.String("root", absRoot))
	return w.Run(cmd.Context())
}

func printResult(root string, r compile.Result) {
	p := output.NewPrinter(output.Terminal())
	subject := r.File
	if rel, err := filepath.Rel(root, r.File); err == nil && !strings.HasPrefix(rel, "..") {
		subject = filepath.ToSlash(rel)
	}
	switch {
	case r.Error != "":
		p.Line(output.Failed, subject, r.Error)
	case !r.Modified:
		p.Line(output.Skipped, subject, "unchanged")
	default:
		p.Line(output.OK, subject, "compiled")
	}
	_, _ = os.Stdout.Write(p.Bytes())
}
