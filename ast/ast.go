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

// Package ast defines the JavaScript tree that ui5ify rewrites.
//
// The model is deliberately small: it types the module-level constructs the
// rewriter cares about (imports, the exported class, call and member
// expressions) and keeps everything else as Raw source text with embedded
// typed children.
package ast

import "fmt"

// Kind identifies the concrete type of a Node.
type Kind int

const (
	KindProgram Kind = iota
	KindImportDeclaration
	KindImportSpecifier
	KindExportDeclaration
	KindClassDeclaration
	KindClassMethod
	KindClassProperty
	KindFunctionExpression
	KindBlockStatement
	KindExpressionStatement
	KindReturnStatement
	KindCallExpression
	KindMemberExpression
	KindIdentifier
	KindStringLiteral
	KindArrayExpression
	KindObjectExpression
	KindObjectProperty
	KindAssignmentExpression
	KindThisExpression
	KindSuper
	KindComment
	KindRaw
	KindText
)

var kindNames = [...]string{
	KindProgram:              "Program",
	KindImportDeclaration:    "ImportDeclaration",
	KindImportSpecifier:      "ImportSpecifier",
	KindExportDeclaration:    "ExportDeclaration",
	KindClassDeclaration:     "ClassDeclaration",
	KindClassMethod:          "ClassMethod",
	KindClassProperty:        "ClassProperty",
	KindFunctionExpression:   "FunctionExpression",
	KindBlockStatement:       "BlockStatement",
	KindExpressionStatement:  "ExpressionStatement",
	KindReturnStatement:      "ReturnStatement",
	KindCallExpression:       "CallExpression",
	KindMemberExpression:     "MemberExpression",
	KindIdentifier:           "Identifier",
	KindStringLiteral:        "StringLiteral",
	KindArrayExpression:      "ArrayExpression",
	KindObjectExpression:     "ObjectExpression",
	KindObjectProperty:       "ObjectProperty",
	KindAssignmentExpression: "AssignmentExpression",
	KindThisExpression:       "ThisExpression",
	KindSuper:                "Super",
	KindComment:              "Comment",
	KindRaw:                  "Raw",
	KindText:                 "Text",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Location points at the source range a node was parsed from.
// Synthesized nodes have a zero Location.
type Location struct {
	File      string
	Line      int // 1-indexed
	Column    int // 1-indexed
	StartByte uint
	EndByte   uint
	// Indent is the leading whitespace of the source line the node starts on.
	Indent string
}

// IsZero reports whether the location is unset.
func (l Location) IsZero() bool {
	return l.Line == 0 && l.File == ""
}

func (l Location) String() string {
	if l.IsZero() {
		return "<generated>"
	}
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Node is implemented by every tree node.
type Node interface {
	Kind() Kind
	Loc() Location
}

// Span is embedded by nodes to carry their Location.
type Span struct {
	Location Location
}

// Loc returns the node's source location.
func (s Span) Loc() Location { return s.Location }

// Program is the root of a unit.
type Program struct {
	Span
	Body []Node
}

// SpecifierKind distinguishes the import binding forms.
type SpecifierKind int

const (
	DefaultSpecifier   SpecifierKind = iota // import X from "m"
	NamespaceSpecifier                      // import * as X from "m"
	NamedSpecifier                          // import { a as X } from "m"
)

// ImportDeclaration is an `import ... from "source"` statement.
type ImportDeclaration struct {
	Span
	Specifiers      []*ImportSpecifier
	Source          *StringLiteral
	LeadingComments []*Comment
}

// ImportSpecifier is a single binding of an import statement.
type ImportSpecifier struct {
	Span
	SpecifierKind SpecifierKind
	Imported      string // exported name for named specifiers
	Local         *Identifier
}

// ExportDeclaration is an `export` statement carrying a declaration or value.
type ExportDeclaration struct {
	Span
	Default         bool
	Declaration     Node
	LeadingComments []*Comment
}

// ClassDeclaration is `class ID extends SuperClass { Body }`.
type ClassDeclaration struct {
	Span
	ID         *Identifier
	SuperClass Node // nil when the class has no heritage
	Body       []Node
}

// MethodKind distinguishes plain methods from accessors.
type MethodKind int

const (
	MethodNormal MethodKind = iota
	MethodGetter
	MethodSetter
)

// ClassMethod is a method member of a class body.
type ClassMethod struct {
	Span
	Key        Node // *Identifier or *StringLiteral
	Params     []Node
	Body       *BlockStatement
	MethodKind MethodKind
	Static     bool
	Generator  bool
	Async      bool
}

// ClassProperty is a field member of a class body.
type ClassProperty struct {
	Span
	Key    Node
	Value  Node // nil when the field has no initializer
	Static bool
}

// FunctionExpression is `function ID(Params) { Body }`.
type FunctionExpression struct {
	Span
	ID        *Identifier
	Params    []Node
	Body      *BlockStatement
	Generator bool
	Async     bool
}

// BlockStatement is a braced statement list.
type BlockStatement struct {
	Span
	Body []Node
}

// ExpressionStatement wraps an expression used as a statement.
type ExpressionStatement struct {
	Span
	Expression      Node
	LeadingComments []*Comment
}

// ReturnStatement is `return Argument;`. Argument may be nil.
type ReturnStatement struct {
	Span
	Argument Node
}

// CallExpression is `Callee(Arguments...)`.
type CallExpression struct {
	Span
	Callee          Node
	Arguments       []Node
	LeadingComments []*Comment
}

// MemberExpression is `Object.Property` or `Object[Property]` when Computed.
type MemberExpression struct {
	Span
	Object   Node
	Property Node
	Computed bool
}

// Identifier is a bare name.
type Identifier struct {
	Span
	Name string
}

// StringLiteral is a quoted string. Raw keeps the source spelling, quotes
// included, when the literal was parsed rather than synthesized.
type StringLiteral struct {
	Span
	Value string
	Raw   string
}

// ArrayExpression is `[Elements...]`.
type ArrayExpression struct {
	Span
	Elements []Node
}

// ObjectExpression is `{ Properties... }`.
type ObjectExpression struct {
	Span
	Properties []*ObjectProperty
}

// PropertyKind distinguishes value properties from accessors.
type PropertyKind int

const (
	PropertyInit PropertyKind = iota
	PropertyGet
	PropertySet
)

// ObjectProperty is `Key: Value`, or an accessor whose Value is a
// *FunctionExpression.
type ObjectProperty struct {
	Span
	Key          Node
	Value        Node
	PropertyKind PropertyKind
}

// AssignmentExpression is `Left Operator Right`.
type AssignmentExpression struct {
	Span
	Operator string
	Left     Node
	Right    Node
}

// ThisExpression is `this`.
type ThisExpression struct{ Span }

// Super is the `super` keyword.
type Super struct{ Span }

// Comment is a line or block comment. Text includes the delimiters.
type Comment struct {
	Span
	Text string
}

// Raw is source text the model does not type. Parts alternate between *Text
// fragments and typed children, in source order.
type Raw struct {
	Span
	Parts []Node
}

// Text is a verbatim fragment inside a Raw node.
type Text struct {
	Span
	Value string
}

func (*Program) Kind() Kind { return KindProgram }
func (*ImportDeclaration) Kind() Kind { return KindImportDeclaration }
func (*ImportSpecifier) Kind() Kind { return KindImportSpecifier }
func (*ExportDeclaration) Kind() Kind { return KindExportDeclaration }
func (*ClassDeclaration) Kind() Kind { return KindClassDeclaration }
func (*ClassMethod) Kind() Kind { return KindClassMethod }
func (*ClassProperty) Kind() Kind { return KindClassProperty }
func (*FunctionExpression) Kind() Kind { return KindFunctionExpression }
func (*BlockStatement) Kind() Kind { return KindBlockStatement }
func (*ExpressionStatement) Kind() Kind { return KindExpressionStatement }
func (*ReturnStatement) Kind() Kind { return KindReturnStatement }
func (*CallExpression) Kind() Kind { return KindCallExpression }
func (*MemberExpression) Kind() Kind { return KindMemberExpression }
func (*Identifier) Kind() Kind { return KindIdentifier }
func (*StringLiteral) Kind() Kind { return KindStringLiteral }
func (*ArrayExpression) Kind() Kind { return KindArrayExpression }
func (*ObjectExpression) Kind() Kind { return KindObjectExpression }
func (*ObjectProperty) Kind() Kind { return KindObjectProperty }
func (*AssignmentExpression) Kind() Kind { return KindAssignmentExpression }
func (*ThisExpression) Kind() Kind { return KindThisExpression }
func (*Super) Kind() Kind { return KindSuper }
func (*Comment) Kind() Kind { return KindComment }
func (*Raw) Kind() Kind { return KindRaw }
func (*Text) Kind() Kind { return KindText }

// KeyName returns the property name a member key denotes, and whether the key
// is a plain identifier (usable after a dot).
func KeyName(key Node) (name string, isIdent bool) {
	switch k := key.(type) {
	case *Identifier:
		return k.Name, true
	case *StringLiteral:
		return k.Value, false
	default:
		return "", false
	}
}
