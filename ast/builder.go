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
package ast

import "strings"

// Builder creates the nodes a rewrite synthesizes. The transform only
// constructs nodes through a Builder, so a different tree representation can
// be plugged in without touching rewrite logic.
type Builder interface {
	Identifier(name string) *Identifier
	StringLiteral(value string) *StringLiteral
	ArrayExpression(elements []Node) *ArrayExpression
	ObjectExpression(props []*ObjectProperty) *ObjectExpression
	ObjectProperty(key, value Node, kind PropertyKind) *ObjectProperty
	FunctionExpression(id *Identifier, params []Node, body *BlockStatement) *FunctionExpression
	BlockStatement(body []Node) *BlockStatement
	ExpressionStatement(expr Node) *ExpressionStatement
	ReturnStatement(arg Node) *ReturnStatement
	CallExpression(callee Node, args []Node) *CallExpression
	MemberExpression(object, property Node, computed bool) *MemberExpression
	AssignmentExpression(op string, left, right Node) *AssignmentExpression
	ThisExpression() *ThisExpression
}

// NewBuilder returns the default Builder. Nodes it creates have a zero
// Location unless the builder was created with WithLocation.
func NewBuilder() *NodeBuilder {
	return &NodeBuilder{}
}

// NodeBuilder is the default Builder implementation.
type NodeBuilder struct {
	loc Location
}

// WithLocation returns a builder that stamps every node it creates with loc.
// Used to attribute synthesized code to the source construct it replaces.
func (b *NodeBuilder) WithLocation(loc Location) *NodeBuilder {
	return &NodeBuilder{loc: loc}
}

func (b *NodeBuilder) span() Span { return Span{Location: b.loc} }

func (b *NodeBuilder) Identifier(name string) *Identifier {
	return &Identifier{Span: b.span(), Name: name}
}

func (b *NodeBuilder) StringLiteral(value string) *StringLiteral {
	return &StringLiteral{Span: b.span(), Value: value}
}

func (b *NodeBuilder) ArrayExpression(elements []Node) *ArrayExpression {
	return &ArrayExpression{Span: b.span(), Elements: elements}
}

func (b *NodeBuilder) ObjectExpression(props []*ObjectProperty) *ObjectExpression {
	return &ObjectExpression{Span: b.span(), Properties: props}
}

func (b *NodeBuilder) ObjectProperty(key, value Node, kind PropertyKind) *ObjectProperty {
	return &ObjectProperty{Span: b.span(), Key: key, Value: value, PropertyKind: kind}
}

func (b *NodeBuilder) FunctionExpression(id *Identifier, params []Node, body *BlockStatement) *FunctionExpression {
	return &FunctionExpression{Span: b.span(), ID: id, Params: params, Body: body}
}

func (b *NodeBuilder) BlockStatement(body []Node) *BlockStatement {
	return &BlockStatement{Span: b.span(), Body: body}
}

func (b *NodeBuilder) ExpressionStatement(expr Node) *ExpressionStatement {
	return &ExpressionStatement{Span: b.span(), Expression: expr}
}

func (b *NodeBuilder) ReturnStatement(arg Node) *ReturnStatement {
	return &ReturnStatement{Span: b.span(), Argument: arg}
}

func (b *NodeBuilder) CallExpression(callee Node, args []Node) *CallExpression {
	return &CallExpression{Span: b.span(), Callee: callee, Arguments: args}
}

func (b *NodeBuilder) MemberExpression(object, property Node, computed bool) *MemberExpression {
	return &MemberExpression{Span: b.span(), Object: object, Property: property, Computed: computed}
}

func (b *NodeBuilder) AssignmentExpression(op string, left, right Node) *AssignmentExpression {
	return &AssignmentExpression{Span: b.span(), Operator: op, Left: left, Right: right}
}

func (b *NodeBuilder) ThisExpression() *ThisExpression {
	return &ThisExpression{Span: b.span()}
}

// DottedName builds a member chain from a dotted path such as
// "sap.ui.define": Identifier("sap").ui.define.
func DottedName(b Builder, path string) Node {
	parts := strings.Split(path, ".")
	var node Node = b.Identifier(parts[0])
	for _, part := range parts[1:] {
		node = b.MemberExpression(node, b.Identifier(part), false)
	}
	return node
}

// MemberChain appends dotted segments to an existing expression.
func MemberChain(b Builder, object Node, segments ...string) Node {
	node := object
	for _, seg := range segments {
		node = b.MemberExpression(node, b.Identifier(seg), false)
	}
	return node
}

// DottedPath returns the dotted spelling of an identifier or a chain of
// non-computed member expressions, and false for anything else.
func DottedPath(n Node) (string, bool) {
	switch n := n.(type) {
	case *Identifier:
		return n.Name, true
	case *MemberExpression:
		if n.Computed {
			return "", false
		}
		prop, ok := n.Property.(*Identifier)
		if !ok {
			return "", false
		}
		obj, ok := DottedPath(n.Object)
		if !ok {
			return "", false
		}
		return obj + "." + prop.Name, true
	default:
		return "", false
	}
}
