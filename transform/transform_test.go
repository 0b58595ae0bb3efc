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
package transform

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/ui5ify/ast"
	"bennypowers.dev/ui5ify/config"
	"bennypowers.dev/ui5ify/internal/mapfs"
	"bennypowers.dev/ui5ify/parse"
	"bennypowers.dev/ui5ify/printer"
)

const root = "/project"

type recordingLogger struct {
	mu       sync.Mutex
	warnings []string
}

func (l *recordingLogger) Warning(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Debug(string, ...any) {}

func (l *recordingLogger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warnings...)
}

// newLoader returns a loader over a project whose configuration declares
// namespace. An empty namespace means no configuration file.
func newLoader(namespace string) *config.Loader {
	mfs := mapfs.New()
	if namespace != "" {
		mfs.AddFile(root+"/"+config.FileName, "NAMESPACE="+namespace+"\n", 0644)
	}
	return config.NewLoader(mfs)
}

func transformSource(t *testing.T, r *Rewriter, filePath, src string) (*Result, error) {
	t.Helper()
	prog, err := parse.File(filePath, []byte(src))
	require.NoError(t, err)
	return r.Transform(prog, Unit{FilePath: filePath, SourceRoot: root})
}

func mustTransform(t *testing.T, namespace, filePath, src string) (string, *Result) {
	t.Helper()
	r := NewRewriter(newLoader(namespace), Options{})
	result, err := transformSource(t, r, filePath, src)
	require.NoError(t, err)
	return printer.String(result.Program), result
}

func TestTransform_EndToEnd(t *testing.T) {
	src := `import Foo from "./Foo";
export default class Bar extends Baz {
	method() {
		super.method();
	}
}
`
	got, result := mustTransform(t, "app", root+"/app/Bar.js", src)

	expected := `sap.ui.define(["app/Foo"], function (Foo) {
	"use strict";
	return Baz.extend("app.Bar", {
		method: function () {
			Baz.prototype.method.apply(this, []);
		}
	});
});
`
	assert.Equal(t, expected, got)
	assert.Equal(t, []Import{{Name: "Foo", Source: "app/Foo"}}, result.State.Imports)
	assert.Equal(t, "Bar", result.State.ClassName)
	assert.Equal(t, "Baz", result.State.SuperClassName)
	assert.Equal(t, "app.Bar", result.State.FullClassName)
}

func TestTransform_NoImports(t *testing.T) {
	got, _ := mustTransform(t, "", root+"/Bar.js", "export default class Bar extends Baz {}\n")

	expected := "sap.ui.define([], function () {\n\t\"use strict\";\n\treturn Baz.extend(\"Bar\", {});\n});\n"
	assert.Equal(t, expected, got)
}

func TestTransform_StaticMembers(t *testing.T) {
	src := `import Control from "sap/ui/core/Control";
export default class Button extends Control {
	static metadata = { properties: {} };
	static create(text) {
		return new Button(text);
	}
	onclick() {
		super.onclick(arguments);
	}
}
`
	got, result := mustTransform(t, "", root+"/Button.js", src)

	expected := `sap.ui.define(["sap/ui/core/Control"], function (Control) {
	"use strict";
	return Control.extend("Button", {
		onclick: function () {
			Control.prototype.onclick.apply(this, [arguments]);
		}
	});
});
Button.metadata = { properties: {} };
Button.create = function (text) {
	"use strict";
	return new Button(text);
};
`
	assert.Equal(t, expected, got)
	assert.Equal(t, 0, result.State.StaticMembers.Len(), "static members are consumed by the export")
	require.Len(t, result.Program.Body, 3)
}

func TestTransform_StaticAccessors(t *testing.T) {
	src := `export default class Store extends Base {
	static get instance() {
		return this._i;
	}
	static set instance(v) {
		this._i = v;
	}
}
`
	got, _ := mustTransform(t, "", root+"/Store.js", src)

	expected := `sap.ui.define([], function () {
	"use strict";
	return Base.extend("Store", {});
});
Object.defineProperty(Store, "instance", {
	get: function () {
		"use strict";
		return this._i;
	},
	set: function (v) {
		"use strict";
		this._i = v;
	},
	configurable: true
});
`
	assert.Equal(t, expected, got)
}

func TestTransform_InstanceMembers(t *testing.T) {
	src := `export default class A extends B {
	label;
	async load() {}
	*items() {}
	get value() {
		return 1;
	}
}
`
	got, _ := mustTransform(t, "", root+"/A.js", src)

	assert.Contains(t, got, "label: undefined,")
	assert.Contains(t, got, "load: async function () {},")
	assert.Contains(t, got, "items: function* () {},")
	assert.Contains(t, got, "get value() {\n\t\t\treturn 1;\n\t\t}")
}

func TestTransform_ImportsStayAligned(t *testing.T) {
	src := `import Foo from "./Foo";
import Util from "../util/Util";
import { a, b } from "sap/base/util";
import "sap/m/library";
import * as Log from "sap/base/Log";
export default class Main extends Foo {}
`
	_, result := mustTransform(t, "", root+"/app/view/Main.js", src)

	expected := []Import{
		{Name: "Foo", Source: "app/view/Foo"},
		{Name: "Util", Source: "app/util/Util"},
		{Name: "util", Source: "sap/base/util"},
		{Name: "library", Source: "sap/m/library"},
		{Name: "Log", Source: "sap/base/Log"},
	}
	assert.Equal(t, expected, result.State.Imports)

	require.Len(t, result.Program.Body, 1)
	define := result.Program.Body[0].(*ast.ExpressionStatement).Expression.(*ast.CallExpression)
	require.Len(t, define.Arguments, 2)
	deps := define.Arguments[0].(*ast.ArrayExpression).Elements
	params := define.Arguments[1].(*ast.FunctionExpression).Params
	require.Len(t, deps, len(expected))
	require.Len(t, params, len(expected))
	for i, imp := range expected {
		assert.Equal(t, imp.Source, deps[i].(*ast.StringLiteral).Value)
		assert.Equal(t, imp.Name, params[i].(*ast.Identifier).Name)
		assert.NotContains(t, deps[i].(*ast.StringLiteral).Value, `\`)
		assert.NotContains(t, deps[i].(*ast.StringLiteral).Value, "./")
	}
}

func TestTransform_FullClassName(t *testing.T) {
	tests := []struct {
		namespace string
		expected  string
	}{
		{"", "Bar"},
		{"my.ns", "my.ns.Bar"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got, result := mustTransform(t, tt.namespace, root+"/Bar.js", "export default class Bar extends Baz {}\n")
			assert.Equal(t, tt.expected, result.State.FullClassName)
			assert.Contains(t, got, fmt.Sprintf("Baz.extend(%q, {})", tt.expected))
		})
	}
}

func TestTransform_DottedBaseAndAnonymousClass(t *testing.T) {
	got, result := mustTransform(t, "app", root+"/view/Page.js", "export default class extends sap.ui.core.Control {}\n")

	assert.Equal(t, "Page", result.State.ClassName)
	assert.Equal(t, "sap.ui.core.Control", result.State.SuperClassName)
	assert.Contains(t, got, `return sap.ui.core.Control.extend("app.Page", {});`)
}

func TestTransform_LeadingComments(t *testing.T) {
	src := "// header\nimport Foo from \"./Foo\";\nexport default class Bar extends Foo {}\n"
	got, _ := mustTransform(t, "", root+"/Bar.js", src)

	assert.True(t, strings.HasPrefix(got, "// header\nsap.ui.define([\"Foo\"], function (Foo) {\n"), got)
}

func TestTransform_NonClassExportPassesThrough(t *testing.T) {
	got, result := mustTransform(t, "", root+"/util.js", "export default function helper() {\n\treturn 1;\n}\n")

	expected := "sap.ui.define([], function () {\n\t\"use strict\";\n\treturn function helper() {\n\t\treturn 1;\n\t};\n});\n"
	assert.Equal(t, expected, got)
	assert.Empty(t, result.State.ClassName)
}

func TestTransform_OutputHasNoModuleSyntax(t *testing.T) {
	src := `import A from "./A";
import B from "./B";
export default class C extends A {
	static x = 1;
	m() {
		super.m();
	}
}
`
	_, result := mustTransform(t, "ns", root+"/C.js", src)

	ast.Inspect(result.Program, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.ImportDeclaration, *ast.ExportDeclaration, *ast.ClassDeclaration, *ast.Super:
			t.Errorf("unexpected %s in output", n.Kind())
		}
		return true
	})
}

func TestTransform_CustomDefineFunction(t *testing.T) {
	r := NewRewriter(newLoader(""), Options{DefineFunction: "define"})
	result, err := transformSource(t, r, root+"/Bar.js", "export default class Bar extends Baz {}\n")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(printer.String(result.Program), "define([], function () {"))
}

func TestTransform_MissingBaseClass(t *testing.T) {
	r := NewRewriter(newLoader(""), Options{})
	_, err := transformSource(t, r, root+"/Bar.js", "export default class Bar {\n\tm() {}\n}\n")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingBaseClass))
	assert.Contains(t, err.Error(), "Bar")

	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 1, terr.Loc.Line)
}

func TestTransform_SuperBeforeClass(t *testing.T) {
	b := ast.NewBuilder()
	loc := ast.Location{File: "Bar.js", Line: 1, Column: 1}
	call := b.WithLocation(loc).CallExpression(b.MemberExpression(&ast.Super{}, b.Identifier("m"), false), nil)
	prog := &ast.Program{Body: []ast.Node{
		b.ExpressionStatement(call),
		&ast.ExportDeclaration{Default: true, Declaration: &ast.ClassDeclaration{
			ID:         b.Identifier("Bar"),
			SuperClass: b.Identifier("Baz"),
		}},
	}}

	r := NewRewriter(newLoader(""), Options{})
	_, err := r.Transform(prog, Unit{FilePath: root + "/Bar.js", SourceRoot: root})

	require.ErrorIs(t, err, ErrIllegalSuper)
	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, loc, terr.Loc)
	assert.Equal(t, "Bar.js:1:1: super can only be used in a class that extends a base class", err.Error())
}

func TestRewriteSuperCall(t *testing.T) {
	b := ast.NewBuilder()
	tests := []struct {
		name     string
		call     *ast.CallExpression
		expected string
	}{
		{
			name:     "constructor call",
			call:     b.CallExpression(&ast.Super{}, []ast.Node{b.Identifier("a"), b.Identifier("b")}),
			expected: "Base.apply(this, [a, b])",
		},
		{
			name:     "arguments pass through",
			call:     b.CallExpression(&ast.Super{}, []ast.Node{b.Identifier("arguments")}),
			expected: "Base.apply(this, arguments)",
		},
		{
			name:     "no arguments",
			call:     b.CallExpression(&ast.Super{}, nil),
			expected: "Base.apply(this, [])",
		},
		{
			name:     "method call",
			call:     b.CallExpression(b.MemberExpression(&ast.Super{}, b.Identifier("foo"), false), []ast.Node{b.Identifier("x")}),
			expected: "Base.prototype.foo.apply(this, [x])",
		},
		{
			name:     "method call wraps arguments",
			call:     b.CallExpression(b.MemberExpression(&ast.Super{}, b.Identifier("foo"), false), []ast.Node{b.Identifier("arguments")}),
			expected: "Base.prototype.foo.apply(this, [arguments])",
		},
		{
			name:     "computed method call",
			call:     b.CallExpression(b.MemberExpression(&ast.Super{}, b.StringLiteral("x-y"), true), nil),
			expected: `Base.prototype["x-y"].apply(this, [])`,
		},
		{
			name:     "unrelated call",
			call:     b.CallExpression(b.MemberExpression(b.ThisExpression(), b.Identifier("foo"), false), nil),
			expected: "this.foo()",
		},
	}

	r := NewRewriter(newLoader(""), Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &State{SuperClassName: "Base"}
			out, err := r.RewriteSuperCall(s, tt.call)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, printer.String(out))
		})
	}
}

func TestRewriteSuperCall_WithoutBase(t *testing.T) {
	b := ast.NewBuilder()
	r := NewRewriter(newLoader(""), Options{})

	for _, call := range []*ast.CallExpression{
		b.CallExpression(&ast.Super{}, nil),
		b.CallExpression(b.MemberExpression(&ast.Super{}, b.Identifier("m"), false), nil),
	} {
		out, err := r.RewriteSuperCall(&State{}, call)
		assert.ErrorIs(t, err, ErrIllegalSuper)
		assert.Nil(t, out)
	}
}

func TestTransform_ImportOutsideRoot(t *testing.T) {
	tests := []struct {
		name     string
		filePath string
		src      string
	}{
		{
			name:     "escapes the root",
			filePath: root + "/app/A.js",
			src:      "import X from \"../../x\";\nexport default class A extends X {}\n",
		},
		{
			name:     "relative import from a unit outside the root",
			filePath: "/elsewhere/A.js",
			src:      "import X from \"./x\";\nexport default class A extends X {}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRewriter(newLoader(""), Options{})
			_, err := transformSource(t, r, tt.filePath, tt.src)
			assert.ErrorIs(t, err, ErrImportOutsideRoot)
		})
	}
}

func TestTransform_BareImportOutsideRoot(t *testing.T) {
	got, result := mustTransform(t, "", "/elsewhere/A.js", "import X from \"sap/x\";\nexport default class A extends X {}\n")

	assert.False(t, result.State.InsideRoot)
	assert.Empty(t, result.State.RelativeFilePath)
	assert.Empty(t, result.State.RelativeFilePathWithoutExtension)
	assert.Contains(t, got, `sap.ui.define(["sap/x"], function (X) {`)
}

func TestTransform_DuplicateImports(t *testing.T) {
	t.Run("same binding", func(t *testing.T) {
		r := NewRewriter(newLoader(""), Options{})
		_, err := transformSource(t, r, root+"/A.js", "import A from \"a\";\nimport A from \"b\";\nexport default class C extends A {}\n")
		assert.ErrorIs(t, err, ErrDuplicateBinding)
	})

	t.Run("same source", func(t *testing.T) {
		logger := &recordingLogger{}
		r := NewRewriter(newLoader(""), Options{Logger: logger})
		result, err := transformSource(t, r, root+"/A.js", "import A from \"x\";\nimport B from \"x\";\nexport default class C extends A {}\n")
		require.NoError(t, err)
		assert.Len(t, result.State.Imports, 2)
		require.Len(t, logger.Warnings(), 1)
		assert.Contains(t, logger.Warnings()[0], "imported more than once")
	})
}

func TestTransform_WarnsOnUnusableBinding(t *testing.T) {
	logger := &recordingLogger{}
	r := NewRewriter(newLoader(""), Options{Logger: logger})
	result, err := transformSource(t, r, root+"/A.js", "import \"./styles.css\";\nexport default class A extends B {}\n")
	require.NoError(t, err)

	assert.Equal(t, []Import{{Name: "styles.css", Source: "styles.css"}}, result.State.Imports)
	require.Len(t, logger.Warnings(), 1)
	assert.Contains(t, logger.Warnings()[0], "not a valid identifier")
}

func TestTransform_StaticMembersOverwrite(t *testing.T) {
	src := `export default class A extends B {
	static a = 1;
	static b = 2;
	static a = 3;
}
`
	got, _ := mustTransform(t, "", root+"/A.js", src)

	assert.True(t, strings.HasSuffix(got, "A.a = 3;\nA.b = 2;\n"), got)
	assert.Equal(t, 1, strings.Count(got, "A.a ="))
}

func TestNewState(t *testing.T) {
	tests := []struct {
		name            string
		filePath        string
		relative        string
		withoutExt      string
		insideRoot      bool
		expectNamespace string
	}{
		{"nested unit", root + "/app/view/Main.controller.js", "app/view/Main.controller.js", "app/view/Main.controller", true, "my.app"},
		{"unit at root", root + "/Foo.js", "Foo.js", "./Foo", true, "my.app"},
		{"outside root", "/other/Foo.js", "", "", false, "my.app"},
	}

	mfs := mapfs.New()
	mfs.AddFile(root+"/"+config.FileName, "# settings\r\nNAMESPACE=my.app\r\n", 0644)
	loader := config.NewLoader(mfs)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewState(loader, Unit{FilePath: tt.filePath, SourceRoot: root})
			require.NoError(t, err)
			assert.Equal(t, tt.filePath, s.FilePath)
			assert.Equal(t, root, s.SourceRoot)
			assert.Equal(t, tt.insideRoot, s.InsideRoot)
			assert.Equal(t, tt.relative, s.RelativeFilePath)
			assert.Equal(t, tt.withoutExt, s.RelativeFilePathWithoutExtension)
			assert.Equal(t, tt.expectNamespace, s.Namespace)
			assert.Empty(t, s.Imports)
			assert.Equal(t, 0, s.StaticMembers.Len())
		})
	}
}

func TestMembers(t *testing.T) {
	b := ast.NewBuilder()
	m := NewMembers()
	m.Set("b", Member{Key: b.Identifier("b"), Value: b.Identifier("one")})
	m.Set("a", Member{Key: b.Identifier("a"), Value: b.Identifier("two")})
	m.Set("b", Member{Key: b.Identifier("b"), Value: b.Identifier("three")})

	assert.Equal(t, []string{"b", "a"}, m.Names())
	assert.Equal(t, 2, m.Len())

	var values []string
	for _, member := range m.All() {
		values = append(values, member.Value.(*ast.Identifier).Name)
	}
	assert.Equal(t, []string{"three", "two"}, values)

	for range m.All() {
		break
	}
}

func TestIsIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"Foo", true},
		{"_private", true},
		{"$", true},
		{"ünï", true},
		{"a1", true},
		{"1a", false},
		{"styles.css", false},
		{"my-lib", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, isIdentifier(tt.name), tt.name)
	}
}
