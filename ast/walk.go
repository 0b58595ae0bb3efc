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

// Cursor is a position in a statement list visited by ApplyList.
// It supports removing, replacing, and inserting statements at the
// visited position.
type Cursor struct {
	list     *[]Node
	index    int
	removed  bool
	inserted int // statements inserted after the current one so far
}

// Node returns the statement at the cursor, or nil once it was removed.
func (c *Cursor) Node() Node {
	if c.removed {
		return nil
	}
	return (*c.list)[c.index]
}

// Index returns the position of the cursor in the list.
func (c *Cursor) Index() int { return c.index }

// Replace substitutes the current statement.
func (c *Cursor) Replace(n Node) {
	if c.removed {
		panic("ast: Replace on removed cursor")
	}
	(*c.list)[c.index] = n
}

// Remove deletes the current statement from the list.
func (c *Cursor) Remove() {
	if c.removed {
		return
	}
	l := *c.list
	*c.list = append(l[:c.index], l[c.index+1:]...)
	c.removed = true
}

// InsertAfter inserts n after the current statement and after anything
// previously inserted through this cursor, so repeated calls keep their order.
func (c *Cursor) InsertAfter(n Node) {
	at := c.index + 1 + c.inserted
	if c.removed {
		at = c.index + c.inserted
	}
	l := *c.list
	l = append(l, nil)
	copy(l[at+1:], l[at:])
	l[at] = n
	*c.list = l
	c.inserted++
}

// ApplyList calls fn for each statement of list in order. Statements
// inserted through the cursor are visited after the one that inserted them;
// removed statements are not revisited.
func ApplyList(list *[]Node, fn func(*Cursor) error) error {
	for i := 0; i < len(*list); {
		c := &Cursor{list: list, index: i}
		if err := fn(c); err != nil {
			return err
		}
		if !c.removed {
			i++
		}
	}
	return nil
}

// Rewrite walks n post-order and replaces each node with the result of fn.
// Children are rewritten before their parent is offered to fn. Returning the
// node unchanged keeps it.
func Rewrite(n Node, fn func(Node) (Node, error)) (Node, error) {
	if n == nil {
		return nil, nil
	}
	if err := rewriteChildren(n, fn); err != nil {
		return nil, err
	}
	return fn(n)
}

func rewriteList(list []Node, fn func(Node) (Node, error)) error {
	for i, child := range list {
		out, err := Rewrite(child, fn)
		if err != nil {
			return err
		}
		list[i] = out
	}
	return nil
}

func rewriteField(field *Node, fn func(Node) (Node, error)) error {
	if *field == nil {
		return nil
	}
	out, err := Rewrite(*field, fn)
	if err != nil {
		return err
	}
	*field = out
	return nil
}

func rewriteBlock(block **BlockStatement, fn func(Node) (Node, error)) error {
	if *block == nil {
		return nil
	}
	out, err := Rewrite(*block, fn)
	if err != nil {
		return err
	}
	if b, ok := out.(*BlockStatement); ok {
		*block = b
	}
	return nil
}

func rewriteChildren(n Node, fn func(Node) (Node, error)) error {
	switch n := n.(type) {
	case *Program:
		return rewriteList(n.Body, fn)
	case *ExportDeclaration:
		return rewriteField(&n.Declaration, fn)
	case *ClassDeclaration:
		if err := rewriteField(&n.SuperClass, fn); err != nil {
			return err
		}
		return rewriteList(n.Body, fn)
	case *ClassMethod:
		if err := rewriteList(n.Params, fn); err != nil {
			return err
		}
		return rewriteBlock(&n.Body, fn)
	case *ClassProperty:
		return rewriteField(&n.Value, fn)
	case *FunctionExpression:
		if err := rewriteList(n.Params, fn); err != nil {
			return err
		}
		return rewriteBlock(&n.Body, fn)
	case *BlockStatement:
		return rewriteList(n.Body, fn)
	case *ExpressionStatement:
		return rewriteField(&n.Expression, fn)
	case *ReturnStatement:
		return rewriteField(&n.Argument, fn)
	case *CallExpression:
		if err := rewriteField(&n.Callee, fn); err != nil {
			return err
		}
		return rewriteList(n.Arguments, fn)
	case *MemberExpression:
		if err := rewriteField(&n.Object, fn); err != nil {
			return err
		}
		if n.Computed {
			return rewriteField(&n.Property, fn)
		}
		return nil
	case *ArrayExpression:
		return rewriteList(n.Elements, fn)
	case *ObjectExpression:
		for _, p := range n.Properties {
			if err := rewriteChildren(p, fn); err != nil {
				return err
			}
		}
		return nil
	case *ObjectProperty:
		return rewriteField(&n.Value, fn)
	case *AssignmentExpression:
		if err := rewriteField(&n.Left, fn); err != nil {
			return err
		}
		return rewriteField(&n.Right, fn)
	case *Raw:
		return rewriteList(n.Parts, fn)
	}
	return nil
}

// Inspect calls fn for n and, while fn returns true, for each descendant in
// source order.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	each := func(list []Node) {
		for _, c := range list {
			Inspect(c, fn)
		}
	}
	switch n := n.(type) {
	case *Program:
		each(n.Body)
	case *ImportDeclaration:
		for _, s := range n.Specifiers {
			Inspect(s, fn)
		}
		Inspect(n.Source, fn)
	case *ExportDeclaration:
		Inspect(n.Declaration, fn)
	case *ClassDeclaration:
		if n.ID != nil {
			Inspect(n.ID, fn)
		}
		Inspect(n.SuperClass, fn)
		each(n.Body)
	case *ClassMethod:
		Inspect(n.Key, fn)
		each(n.Params)
		if n.Body != nil {
			Inspect(n.Body, fn)
		}
	case *ClassProperty:
		Inspect(n.Key, fn)
		Inspect(n.Value, fn)
	case *FunctionExpression:
		each(n.Params)
		if n.Body != nil {
			Inspect(n.Body, fn)
		}
	case *BlockStatement:
		each(n.Body)
	case *ExpressionStatement:
		Inspect(n.Expression, fn)
	case *ReturnStatement:
		Inspect(n.Argument, fn)
	case *CallExpression:
		Inspect(n.Callee, fn)
		each(n.Arguments)
	case *MemberExpression:
		Inspect(n.Object, fn)
		Inspect(n.Property, fn)
	case *ArrayExpression:
		each(n.Elements)
	case *ObjectExpression:
		for _, p := range n.Properties {
			Inspect(p, fn)
		}
	case *ObjectProperty:
		Inspect(n.Key, fn)
		Inspect(n.Value, fn)
	case *AssignmentExpression:
		Inspect(n.Left, fn)
		Inspect(n.Right, fn)
	case *Raw:
		each(n.Parts)
	}
}
