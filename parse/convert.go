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
	"bytes"

	ts "github.com/tree-sitter/go-tree-sitter"

	"bennypowers.dev/ui5ify/ast"
)

// converter turns a tree-sitter concrete syntax tree into an ast tree.
type converter struct {
	file string
	src  []byte
	// types is set for grammars that can contain TypeScript syntax, which
	// forces raw conversion to walk every subtree looking for types to erase.
	types bool
}

func (c *converter) loc(n *ts.Node) ast.Location {
	pos := n.StartPosition()
	return ast.Location{
		File:      c.file,
		Line:      int(pos.Row) + 1,
		Column:    int(pos.Column) + 1,
		StartByte: n.StartByte(),
		EndByte:   n.EndByte(),
		Indent:    lineIndent(c.src, n.StartByte()),
	}
}

func (c *converter) span(n *ts.Node) ast.Span {
	return ast.Span{Location: c.loc(n)}
}

func (c *converter) text(n *ts.Node) string {
	return n.Utf8Text(c.src)
}

// lineIndent returns the leading whitespace of the line containing offset at.
func lineIndent(src []byte, at uint) string {
	start := int(at)
	if start > len(src) {
		start = len(src)
	}
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	end := start
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return string(src[start:end])
}

// hasToken reports whether n has a direct anonymous child of the given kind,
// such as the "static" or "default" keyword.
func hasToken(n *ts.Node, kind string) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if !child.IsNamed() && child.Kind() == kind {
			return true
		}
	}
	return false
}

// hasNamed reports whether n has a direct named child of the given kind.
func hasNamed(n *ts.Node, kind string) bool {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if n.NamedChild(i).Kind() == kind {
			return true
		}
	}
	return false
}

// typeOnlyDeclarations are statements with no runtime meaning.
var typeOnlyDeclarations = map[string]bool{
	"interface_declaration":  true,
	"type_alias_declaration": true,
	"ambient_declaration":    true,
}

func (c *converter) program(root *ts.Node) *ast.Program {
	prog := &ast.Program{Span: c.span(root)}

	var pending []*ast.Comment
	flush := func() {
		for _, cm := range pending {
			prog.Body = append(prog.Body, cm)
		}
		pending = nil
	}

	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		switch child.Kind() {
		case "comment":
			pending = append(pending, c.comment(child))
		case "import_statement":
			stmt := c.importDecl(child)
			if stmt == nil {
				// erased type-only import; its comments move to the next statement
				continue
			}
			if imp, ok := stmt.(*ast.ImportDeclaration); ok {
				imp.LeadingComments = pending
				pending = nil
			} else {
				flush()
			}
			prog.Body = append(prog.Body, stmt)
		case "export_statement":
			stmt := c.exportDecl(child)
			if stmt == nil {
				continue
			}
			if exp, ok := stmt.(*ast.ExportDeclaration); ok {
				exp.LeadingComments = pending
				pending = nil
			} else {
				flush()
			}
			prog.Body = append(prog.Body, stmt)
		default:
			stmt := c.statement(child)
			if stmt == nil {
				continue
			}
			flush()
			prog.Body = append(prog.Body, stmt)
		}
	}
	flush()
	return prog
}

func (c *converter) comment(n *ts.Node) *ast.Comment {
	return &ast.Comment{Span: c.span(n), Text: c.text(n)}
}

func (c *converter) ident(n *ts.Node) *ast.Identifier {
	return &ast.Identifier{Span: c.span(n), Name: c.text(n)}
}

func (c *converter) stringLit(n *ts.Node) *ast.StringLiteral {
	raw := c.text(n)
	return &ast.StringLiteral{Span: c.span(n), Value: unquote(raw), Raw: raw}
}

// importDecl converts an import statement. It returns nil for type-only
// imports and a Raw node for forms the tree does not model.
func (c *converter) importDecl(n *ts.Node) ast.Node {
	if hasToken(n, "type") {
		return nil
	}
	source := n.ChildByFieldName("source")
	if source == nil || hasNamed(n, "import_require_clause") {
		return c.raw(n)
	}

	decl := &ast.ImportDeclaration{Span: c.span(n), Source: c.stringLit(source)}
	erased := 0
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child.Kind() != "import_clause" {
			continue
		}
		for j := uint(0); j < child.NamedChildCount(); j++ {
			part := child.NamedChild(j)
			switch part.Kind() {
			case "identifier":
				decl.Specifiers = append(decl.Specifiers, &ast.ImportSpecifier{
					Span:          c.span(part),
					SpecifierKind: ast.DefaultSpecifier,
					Local:         c.ident(part),
				})
			case "namespace_import":
				for k := uint(0); k < part.NamedChildCount(); k++ {
					if id := part.NamedChild(k); id.Kind() == "identifier" {
						decl.Specifiers = append(decl.Specifiers, &ast.ImportSpecifier{
							Span:          c.span(part),
							SpecifierKind: ast.NamespaceSpecifier,
							Local:         c.ident(id),
						})
					}
				}
			case "named_imports":
				for k := uint(0); k < part.NamedChildCount(); k++ {
					spec := part.NamedChild(k)
					if spec.Kind() != "import_specifier" {
						continue
					}
					if hasToken(spec, "type") {
						erased++
						continue
					}
					if s := c.importSpecifier(spec); s != nil {
						decl.Specifiers = append(decl.Specifiers, s)
					}
				}
			}
		}
	}

	if erased > 0 && len(decl.Specifiers) == 0 {
		return nil
	}
	return decl
}

func (c *converter) importSpecifier(n *ts.Node) *ast.ImportSpecifier {
	name := n.ChildByFieldName("name")
	if name == nil {
		return nil
	}
	imported := c.text(name)
	if name.Kind() == "string" {
		imported = unquote(imported)
	}
	local := name
	if alias := n.ChildByFieldName("alias"); alias != nil {
		local = alias
	}
	return &ast.ImportSpecifier{
		Span:          c.span(n),
		SpecifierKind: ast.NamedSpecifier,
		Imported:      imported,
		Local:         c.ident(local),
	}
}

// exportDecl converts an export statement. Exports of type-only declarations
// are erased; re-exports and export lists are kept as Raw statements.
func (c *converter) exportDecl(n *ts.Node) ast.Node {
	if hasToken(n, "type") {
		return nil
	}
	exp := &ast.ExportDeclaration{Span: c.span(n), Default: hasToken(n, "default")}

	if decl := n.ChildByFieldName("declaration"); decl != nil {
		switch {
		case decl.Kind() == "class_declaration" || decl.Kind() == "abstract_class_declaration":
			exp.Declaration = c.class(decl)
		case typeOnlyDeclarations[decl.Kind()]:
			return nil
		default:
			exp.Declaration = c.raw(decl)
		}
		return exp
	}

	if value := n.ChildByFieldName("value"); value != nil {
		if value.Kind() == "class" {
			exp.Declaration = c.class(value)
		} else {
			exp.Declaration = c.expr(value)
		}
		return exp
	}

	return c.raw(n)
}

func (c *converter) class(n *ts.Node) *ast.ClassDeclaration {
	cls := &ast.ClassDeclaration{Span: c.span(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		cls.ID = c.ident(name)
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if child := n.NamedChild(i); child.Kind() == "class_heritage" {
			cls.SuperClass = c.heritage(child)
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		cls.Body = c.classBody(body)
	}
	return cls
}

// heritage returns the base class expression. The JavaScript grammar puts the
// expression directly under class_heritage, TypeScript wraps it in an
// extends_clause next to an optional implements_clause.
func (c *converter) heritage(n *ts.Node) ast.Node {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		switch child.Kind() {
		case "extends_clause":
			if value := child.ChildByFieldName("value"); value != nil {
				return c.expr(value)
			}
		case "implements_clause", "comment":
		default:
			return c.expr(child)
		}
	}
	return nil
}

func (c *converter) classBody(n *ts.Node) []ast.Node {
	var members []ast.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		switch child.Kind() {
		case "method_definition":
			members = append(members, c.method(child))
		case "field_definition", "public_field_definition":
			if field := c.field(child); field != nil {
				members = append(members, field)
			}
		case "comment":
			members = append(members, c.comment(child))
		case "decorator", "method_signature", "abstract_method_signature", "index_signature":
			// declarations only
		default:
			members = append(members, c.raw(child))
		}
	}
	return members
}

func (c *converter) method(n *ts.Node) ast.Node {
	name := n.ChildByFieldName("name")
	if name == nil {
		return c.raw(n)
	}
	m := &ast.ClassMethod{Span: c.span(n), Key: c.key(name)}

	// modifiers are the anonymous tokens before the name
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child.StartByte() >= name.StartByte() {
			break
		}
		if child.IsNamed() {
			continue
		}
		switch child.Kind() {
		case "static":
			m.Static = true
		case "async":
			m.Async = true
		case "*":
			m.Generator = true
		case "get":
			m.MethodKind = ast.MethodGetter
		case "set":
			m.MethodKind = ast.MethodSetter
		}
	}

	m.Params = c.params(n.ChildByFieldName("parameters"))
	if body := n.ChildByFieldName("body"); body != nil {
		m.Body = c.block(body)
	} else {
		m.Body = &ast.BlockStatement{Span: c.span(n)}
	}
	return m
}

func (c *converter) field(n *ts.Node) ast.Node {
	if hasToken(n, "declare") || hasToken(n, "abstract") {
		return nil
	}
	name := n.ChildByFieldName("name")
	if name == nil {
		name = n.ChildByFieldName("property")
	}
	if name == nil {
		return c.raw(n)
	}
	prop := &ast.ClassProperty{
		Span:   c.span(n),
		Key:    c.key(name),
		Static: hasToken(n, "static"),
	}
	if value := n.ChildByFieldName("value"); value != nil {
		prop.Value = c.expr(value)
	}
	return prop
}

// key converts a member name. Computed names yield their inner expression;
// numeric names are kept as Raw.
func (c *converter) key(n *ts.Node) ast.Node {
	switch n.Kind() {
	case "property_identifier", "private_property_identifier", "identifier":
		return c.ident(n)
	case "string":
		return c.stringLit(n)
	case "computed_property_name":
		if n.NamedChildCount() > 0 {
			return c.expr(n.NamedChild(0))
		}
	}
	return c.raw(n)
}

func (c *converter) params(n *ts.Node) []ast.Node {
	if n == nil {
		return nil
	}
	var out []ast.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		switch child.Kind() {
		case "comment":
		case "identifier":
			out = append(out, c.ident(child))
		case "required_parameter":
			pattern := child.ChildByFieldName("pattern")
			switch {
			case pattern != nil && pattern.Kind() == "this":
				// this parameter is a type annotation only
			case pattern != nil && pattern.Kind() == "identifier" &&
				child.ChildByFieldName("value") == nil && !hasNamed(child, "accessibility_modifier"):
				out = append(out, c.ident(pattern))
			default:
				out = append(out, c.raw(child))
			}
		default:
			out = append(out, c.raw(child))
		}
	}
	return out
}

func (c *converter) block(n *ts.Node) *ast.BlockStatement {
	b := &ast.BlockStatement{Span: c.span(n)}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if stmt := c.statement(n.NamedChild(i)); stmt != nil {
			b.Body = append(b.Body, stmt)
		}
	}
	return b
}

func (c *converter) statement(n *ts.Node) ast.Node {
	switch n.Kind() {
	case "comment":
		return c.comment(n)
	case "expression_statement":
		if n.NamedChildCount() == 1 {
			return &ast.ExpressionStatement{Span: c.span(n), Expression: c.expr(n.NamedChild(0))}
		}
	case "return_statement":
		switch n.NamedChildCount() {
		case 0:
			return &ast.ReturnStatement{Span: c.span(n)}
		case 1:
			return &ast.ReturnStatement{Span: c.span(n), Argument: c.expr(n.NamedChild(0))}
		}
	case "statement_block":
		return c.block(n)
	case "empty_statement":
		return nil
	default:
		if typeOnlyDeclarations[n.Kind()] {
			return nil
		}
	}
	return c.raw(n)
}

func (c *converter) expr(n *ts.Node) ast.Node {
	switch n.Kind() {
	case "identifier", "property_identifier", "private_property_identifier",
		"shorthand_property_identifier", "type_identifier":
		return c.ident(n)
	case "this":
		return &ast.ThisExpression{Span: c.span(n)}
	case "super":
		return &ast.Super{Span: c.span(n)}
	case "string":
		return c.stringLit(n)
	case "call_expression":
		if call := c.call(n); call != nil {
			return call
		}
	case "member_expression":
		obj, prop := n.ChildByFieldName("object"), n.ChildByFieldName("property")
		if obj != nil && prop != nil && !hasNamed(n, "optional_chain") && !hasNamed(n, "comment") {
			return &ast.MemberExpression{Span: c.span(n), Object: c.expr(obj), Property: c.ident(prop)}
		}
	case "subscript_expression":
		obj, index := n.ChildByFieldName("object"), n.ChildByFieldName("index")
		if obj != nil && index != nil && !hasNamed(n, "optional_chain") && !hasNamed(n, "comment") {
			return &ast.MemberExpression{Span: c.span(n), Object: c.expr(obj), Property: c.expr(index), Computed: true}
		}
	default:
		if inner := unwrapType(n); inner != nil {
			return c.expr(inner)
		}
	}
	return c.raw(n)
}

func (c *converter) call(n *ts.Node) *ast.CallExpression {
	fn, args := n.ChildByFieldName("function"), n.ChildByFieldName("arguments")
	if fn == nil || args == nil || args.Kind() != "arguments" || hasNamed(n, "optional_chain") {
		return nil
	}
	call := &ast.CallExpression{Span: c.span(n), Callee: c.expr(fn)}
	for i := uint(0); i < args.NamedChildCount(); i++ {
		arg := args.NamedChild(i)
		if arg.Kind() == "comment" {
			return nil
		}
		call.Arguments = append(call.Arguments, c.expr(arg))
	}
	return call
}

var superKeyword = []byte("super")

// erasedKinds are TypeScript constructs removed wherever they occur.
var erasedKinds = map[string]bool{
	"type_annotation":           true,
	"type_arguments":            true,
	"type_parameters":           true,
	"type_predicate_annotation": true,
	"asserts_annotation":        true,
	"omitting_type_annotation":  true,
	"opting_type_annotation":    true,
	"adding_type_annotation":    true,
	"accessibility_modifier":    true,
	"override_modifier":         true,
	"implements_clause":         true,
	"decorator":                 true,
	"interface_declaration":     true,
	"type_alias_declaration":    true,
	"ambient_declaration":       true,
	"abstract_method_signature": true,
	"index_signature":           true,
	"method_signature":          true,
	"function_signature":        true,
}

// isErased reports whether child is TypeScript-only syntax within parent.
func isErased(parent, child *ts.Node) bool {
	if child.IsNamed() {
		return erasedKinds[child.Kind()]
	}
	switch child.Kind() {
	case "?":
		return parent.Kind() == "optional_parameter"
	case "!":
		return parent.Kind() == "public_field_definition"
	case "readonly", "declare", "abstract":
		return true
	}
	return false
}

// unwrapType returns the expression inside a type assertion, or nil when n
// is not one.
func unwrapType(n *ts.Node) *ts.Node {
	switch n.Kind() {
	case "as_expression", "satisfies_expression", "non_null_expression":
		if n.NamedChildCount() > 0 {
			return n.NamedChild(0)
		}
	case "type_assertion":
		if count := n.NamedChildCount(); count > 0 {
			return n.NamedChild(count - 1)
		}
	}
	return nil
}

// raw converts n to a Raw node holding its source text. Type syntax is
// erased, and calls and member accesses on super become typed parts.
func (c *converter) raw(n *ts.Node) *ast.Raw {
	r := &ast.Raw{Span: c.span(n)}
	pos := n.StartByte()
	for i := uint(0); i < n.ChildCount(); i++ {
		pos = c.emit(n, n.Child(i), pos, &r.Parts)
	}
	c.appendText(&r.Parts, pos, n.EndByte())
	return r
}

// emit accounts for child, given that source before pos has already been
// emitted. It returns the offset up to which source has been accounted for;
// text from there on is still pending.
func (c *converter) emit(parent, child *ts.Node, pos uint, parts *[]ast.Node) uint {
	if isErased(parent, child) {
		c.appendText(parts, pos, child.StartByte())
		return child.EndByte()
	}

	if inner := unwrapType(child); inner != nil {
		c.appendText(parts, pos, child.StartByte())
		p := c.emit(child, inner, inner.StartByte(), parts)
		c.appendText(parts, p, inner.EndByte())
		return child.EndByte()
	}

	mentionsSuper := bytes.Contains(c.src[child.StartByte():child.EndByte()], superKeyword)
	switch child.Kind() {
	case "call_expression", "member_expression", "subscript_expression":
		if mentionsSuper {
			c.appendText(parts, pos, child.StartByte())
			*parts = append(*parts, c.expr(child))
			return child.EndByte()
		}
	}

	if child.ChildCount() > 0 && (mentionsSuper || c.types) {
		for i := uint(0); i < child.ChildCount(); i++ {
			pos = c.emit(child, child.Child(i), pos, parts)
		}
	}
	return pos
}

// appendText adds the source between from and to, merging with a preceding
// text part.
func (c *converter) appendText(parts *[]ast.Node, from, to uint) {
	if to <= from {
		return
	}
	s := string(c.src[from:to])
	if n := len(*parts); n > 0 {
		if t, ok := (*parts)[n-1].(*ast.Text); ok {
			t.Value += s
			return
		}
	}
	*parts = append(*parts, &ast.Text{Value: s})
}
