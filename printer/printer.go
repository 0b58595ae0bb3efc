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

// Package printer renders an ast tree back to JavaScript source.
package printer

import (
	"fmt"
	"io"
	"strings"

	"bennypowers.dev/ui5ify/ast"
)

// DefaultIndent is the indentation unit used when Options.Indent is empty.
const DefaultIndent = "\t"

// Options configures output formatting.
type Options struct {
	// Indent is one level of indentation. Defaults to a tab.
	Indent string
}

// Print writes the JavaScript for n to w.
func Print(w io.Writer, n ast.Node, opts Options) error {
	p := newPrinter(opts)
	if err := p.top(n); err != nil {
		return err
	}
	_, err := io.WriteString(w, p.buf.String())
	return err
}

// String renders n with default options. Unsupported nodes render as a
// comment naming their kind.
func String(n ast.Node) string {
	p := newPrinter(Options{})
	if err := p.top(n); err != nil {
		return fmt.Sprintf("/* %v */", err)
	}
	return p.buf.String()
}

type printer struct {
	buf    strings.Builder
	indent string
	depth  int

	// rawBase is the source indentation that raw text is re-based from.
	rawBase string
	inRaw   bool
}

func newPrinter(opts Options) *printer {
	indent := opts.Indent
	if indent == "" {
		indent = DefaultIndent
	}
	return &printer{indent: indent}
}

func (p *printer) top(n ast.Node) error {
	switch n := n.(type) {
	case *ast.Program:
		for _, stmt := range n.Body {
			if err := p.statement(stmt); err != nil {
				return err
			}
		}
		return nil
	case *ast.ImportDeclaration, *ast.ExportDeclaration, *ast.ClassDeclaration,
		*ast.ExpressionStatement, *ast.ReturnStatement, *ast.BlockStatement, *ast.Comment:
		return p.statement(n)
	default:
		return p.expr(n)
	}
}

func (p *printer) write(s string) { p.buf.WriteString(s) }

func (p *printer) newline() {
	p.buf.WriteByte('\n')
	p.write(strings.Repeat(p.indent, p.depth))
}

func (p *printer) writeIndent() {
	p.write(strings.Repeat(p.indent, p.depth))
}

// withBase sets the raw re-indentation base for the duration of fn when loc
// comes from source.
func (p *printer) withBase(loc ast.Location, fn func() error) error {
	if loc.IsZero() || p.inRaw {
		return fn()
	}
	saved := p.rawBase
	p.rawBase = loc.Indent
	err := fn()
	p.rawBase = saved
	return err
}

func (p *printer) comments(cs []*ast.Comment) {
	for _, c := range cs {
		p.writeIndent()
		p.rawText(c.Text)
		p.write("\n")
	}
}

func (p *printer) statement(n ast.Node) error {
	return p.withBase(n.Loc(), func() error {
		switch n := n.(type) {
		case *ast.Comment:
			p.writeIndent()
			p.rawText(n.Text)
		case *ast.ImportDeclaration:
			p.comments(n.LeadingComments)
			p.writeIndent()
			p.importDecl(n)
		case *ast.ExportDeclaration:
			p.comments(n.LeadingComments)
			p.writeIndent()
			if err := p.exportDecl(n); err != nil {
				return err
			}
		case *ast.ClassDeclaration:
			p.writeIndent()
			if err := p.class(n); err != nil {
				return err
			}
		case *ast.ExpressionStatement:
			p.comments(n.LeadingComments)
			if call, ok := n.Expression.(*ast.CallExpression); ok {
				p.comments(call.LeadingComments)
			}
			p.writeIndent()
			if err := p.exprNoComments(n.Expression); err != nil {
				return err
			}
			p.write(";")
		case *ast.ReturnStatement:
			p.writeIndent()
			p.write("return")
			if n.Argument != nil {
				p.write(" ")
				if err := p.expr(n.Argument); err != nil {
					return err
				}
			}
			p.write(";")
		case *ast.BlockStatement:
			p.writeIndent()
			if err := p.block(n); err != nil {
				return err
			}
		case *ast.Raw:
			p.writeIndent()
			if err := p.raw(n); err != nil {
				return err
			}
		default:
			p.writeIndent()
			if err := p.expr(n); err != nil {
				return err
			}
			p.write(";")
		}
		p.write("\n")
		return nil
	})
}

func (p *printer) importDecl(n *ast.ImportDeclaration) {
	p.write("import ")
	var named []string
	var head []string
	for _, s := range n.Specifiers {
		switch s.SpecifierKind {
		case ast.DefaultSpecifier:
			head = append(head, s.Local.Name)
		case ast.NamespaceSpecifier:
			head = append(head, "* as "+s.Local.Name)
		case ast.NamedSpecifier:
			if s.Imported != "" && s.Imported != s.Local.Name {
				named = append(named, s.Imported+" as "+s.Local.Name)
			} else {
				named = append(named, s.Local.Name)
			}
		}
	}
	if len(named) > 0 {
		head = append(head, "{ "+strings.Join(named, ", ")+" }")
	}
	if len(head) > 0 {
		p.write(strings.Join(head, ", "))
		p.write(" from ")
	}
	p.stringLit(n.Source)
	p.write(";")
}

func (p *printer) exportDecl(n *ast.ExportDeclaration) error {
	p.write("export ")
	if n.Default {
		p.write("default ")
	}
	switch d := n.Declaration.(type) {
	case *ast.ClassDeclaration:
		return p.class(d)
	case *ast.Raw:
		return p.raw(d)
	default:
		if err := p.expr(d); err != nil {
			return err
		}
		p.write(";")
		return nil
	}
}

func (p *printer) class(n *ast.ClassDeclaration) error {
	p.write("class")
	if n.ID != nil {
		p.write(" " + n.ID.Name)
	}
	if n.SuperClass != nil {
		p.write(" extends ")
		if err := p.expr(n.SuperClass); err != nil {
			return err
		}
	}
	p.write(" {")
	if len(n.Body) == 0 {
		p.write("}")
		return nil
	}
	p.depth++
	for _, m := range n.Body {
		p.newline()
		if err := p.classMember(m); err != nil {
			return err
		}
	}
	p.depth--
	p.newline()
	p.write("}")
	return nil
}

func (p *printer) classMember(n ast.Node) error {
	return p.withBase(n.Loc(), func() error {
		switch m := n.(type) {
		case *ast.ClassMethod:
			if m.Static {
				p.write("static ")
			}
			if m.Async {
				p.write("async ")
			}
			switch m.MethodKind {
			case ast.MethodGetter:
				p.write("get ")
			case ast.MethodSetter:
				p.write("set ")
			}
			if m.Generator {
				p.write("*")
			}
			if err := p.key(m.Key); err != nil {
				return err
			}
			if err := p.params(m.Params); err != nil {
				return err
			}
			p.write(" ")
			return p.block(m.Body)
		case *ast.ClassProperty:
			if m.Static {
				p.write("static ")
			}
			if err := p.key(m.Key); err != nil {
				return err
			}
			if m.Value != nil {
				p.write(" = ")
				if err := p.expr(m.Value); err != nil {
					return err
				}
			}
			p.write(";")
			return nil
		case *ast.Comment:
			p.rawText(m.Text)
			return nil
		default:
			return p.expr(m)
		}
	})
}

func (p *printer) key(k ast.Node) error {
	switch k := k.(type) {
	case *ast.Identifier:
		p.write(k.Name)
	case *ast.StringLiteral:
		p.stringLit(k)
	default:
		p.write("[")
		if err := p.expr(k); err != nil {
			return err
		}
		p.write("]")
	}
	return nil
}

func (p *printer) params(params []ast.Node) error {
	p.write("(")
	for i, param := range params {
		if i > 0 {
			p.write(", ")
		}
		if err := p.expr(param); err != nil {
			return err
		}
	}
	p.write(")")
	return nil
}

func (p *printer) block(b *ast.BlockStatement) error {
	if b == nil || len(b.Body) == 0 {
		p.write("{}")
		return nil
	}
	p.write("{\n")
	p.depth++
	for _, stmt := range b.Body {
		if err := p.statement(stmt); err != nil {
			return err
		}
	}
	p.depth--
	p.writeIndent()
	p.write("}")
	return nil
}

func (p *printer) expr(n ast.Node) error {
	if call, ok := n.(*ast.CallExpression); ok && len(call.LeadingComments) > 0 {
		for _, c := range call.LeadingComments {
			p.rawText(c.Text)
			p.newline()
		}
	}
	return p.exprNoComments(n)
}

func (p *printer) exprNoComments(n ast.Node) error {
	switch n := n.(type) {
	case *ast.Identifier:
		p.write(n.Name)
	case *ast.ThisExpression:
		p.write("this")
	case *ast.Super:
		p.write("super")
	case *ast.StringLiteral:
		p.stringLit(n)
	case *ast.CallExpression:
		if err := p.operand(n.Callee); err != nil {
			return err
		}
		p.write("(")
		for i, arg := range n.Arguments {
			if i > 0 {
				p.write(", ")
			}
			if err := p.expr(arg); err != nil {
				return err
			}
		}
		p.write(")")
	case *ast.MemberExpression:
		if err := p.operand(n.Object); err != nil {
			return err
		}
		if n.Computed {
			p.write("[")
			if err := p.expr(n.Property); err != nil {
				return err
			}
			p.write("]")
		} else {
			p.write(".")
			if err := p.expr(n.Property); err != nil {
				return err
			}
		}
	case *ast.ArrayExpression:
		p.write("[")
		for i, el := range n.Elements {
			if i > 0 {
				p.write(", ")
			}
			if err := p.expr(el); err != nil {
				return err
			}
		}
		p.write("]")
	case *ast.ObjectExpression:
		return p.object(n)
	case *ast.FunctionExpression:
		return p.function(n)
	case *ast.AssignmentExpression:
		if err := p.expr(n.Left); err != nil {
			return err
		}
		p.write(" " + n.Operator + " ")
		return p.expr(n.Right)
	case *ast.Raw:
		return p.raw(n)
	case *ast.ClassDeclaration:
		return p.class(n)
	case *ast.Comment:
		p.rawText(n.Text)
	default:
		return fmt.Errorf("printer: unsupported node %s", n.Kind())
	}
	return nil
}

// operand prints n in callee or object position, parenthesizing forms that
// would otherwise bind differently.
func (p *printer) operand(n ast.Node) error {
	switch n.(type) {
	case *ast.FunctionExpression, *ast.AssignmentExpression, *ast.ObjectExpression:
		p.write("(")
		if err := p.expr(n); err != nil {
			return err
		}
		p.write(")")
		return nil
	}
	return p.expr(n)
}

func (p *printer) function(n *ast.FunctionExpression) error {
	if n.Async {
		p.write("async ")
	}
	p.write("function")
	if n.Generator {
		p.write("*")
	}
	if n.ID != nil {
		p.write(" " + n.ID.Name)
	} else {
		p.write(" ")
	}
	if err := p.params(n.Params); err != nil {
		return err
	}
	p.write(" ")
	return p.block(n.Body)
}

func (p *printer) object(n *ast.ObjectExpression) error {
	if len(n.Properties) == 0 {
		p.write("{}")
		return nil
	}
	p.write("{")
	p.depth++
	for i, prop := range n.Properties {
		if i > 0 {
			p.write(",")
		}
		p.newline()
		if err := p.property(prop); err != nil {
			return err
		}
	}
	p.depth--
	p.newline()
	p.write("}")
	return nil
}

func (p *printer) property(n *ast.ObjectProperty) error {
	loc := n.Loc()
	if n.Value != nil && loc.IsZero() {
		loc = n.Value.Loc()
	}
	return p.withBase(loc, func() error {
		if n.PropertyKind != ast.PropertyInit {
			fn, ok := n.Value.(*ast.FunctionExpression)
			if !ok {
				return fmt.Errorf("printer: accessor value must be a function, got %s", n.Value.Kind())
			}
			if n.PropertyKind == ast.PropertyGet {
				p.write("get ")
			} else {
				p.write("set ")
			}
			if err := p.key(n.Key); err != nil {
				return err
			}
			if err := p.params(fn.Params); err != nil {
				return err
			}
			p.write(" ")
			return p.block(fn.Body)
		}
		if err := p.key(n.Key); err != nil {
			return err
		}
		p.write(": ")
		if n.Value == nil {
			p.write("undefined")
			return nil
		}
		return p.expr(n.Value)
	})
}

func (p *printer) stringLit(s *ast.StringLiteral) {
	if s.Raw != "" {
		p.write(s.Raw)
		return
	}
	p.write(Quote(s.Value))
}

func (p *printer) raw(n *ast.Raw) error {
	outer := !p.inRaw
	saved := p.rawBase
	if outer && !n.Loc().IsZero() && p.rawBase == "" {
		p.rawBase = n.Loc().Indent
	}
	p.inRaw = true
	defer func() {
		if outer {
			p.inRaw = false
			p.rawBase = saved
		}
	}()
	for _, part := range n.Parts {
		if t, ok := part.(*ast.Text); ok {
			p.rawText(t.Value)
			continue
		}
		if err := p.expr(part); err != nil {
			return err
		}
	}
	return nil
}

// rawText writes source text, moving every continuation line from the
// source indentation base to the current depth. Fragments containing a
// template literal are written untouched since their whitespace is content.
func (p *printer) rawText(s string) {
	if !strings.Contains(s, "\n") || strings.Contains(s, "`") {
		p.write(s)
		return
	}
	current := strings.Repeat(p.indent, p.depth)
	lines := strings.Split(s, "\n")
	p.write(lines[0])
	for _, line := range lines[1:] {
		p.write("\n")
		if p.rawBase != "" && strings.HasPrefix(line, p.rawBase) {
			line = current + strings.TrimPrefix(line, p.rawBase)
		} else if p.rawBase == "" && strings.TrimSpace(line) != "" {
			line = current + line
		}
		p.write(line)
	}
}

// Quote returns s as a double-quoted JavaScript string literal.
func Quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\u2028':
			b.WriteString(`\u2028`)
		case '\u2029':
			b.WriteString(`\u2029`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\x%02x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
