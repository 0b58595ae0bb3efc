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
	"fmt"
	"path/filepath"
	"strings"

	"bennypowers.dev/ui5ify/ast"
)

// LowerClass returns the Base.extend call that replaces a class declaration.
// Instance members become properties of the members object in declaration
// order; static members are scheduled in s.StaticMembers. Any other node is
// returned unchanged.
func (r *Rewriter) LowerClass(s *State, node ast.Node) (ast.Node, error) {
	class, ok := node.(*ast.ClassDeclaration)
	if !ok {
		return node, nil
	}
	if err := r.resolveClass(s, class); err != nil {
		return nil, err
	}

	var props []*ast.ObjectProperty
	for i, member := range class.Body {
		switch m := member.(type) {
		case *ast.ClassMethod:
			fn := r.method(m)
			if m.Static {
				r.addStatic(s, i, m.Key, fn, m.MethodKind)
				continue
			}
			props = append(props, r.build(m.Loc()).ObjectProperty(m.Key, fn, propertyKind(m.MethodKind)))
		case *ast.ClassProperty:
			value := m.Value
			if value == nil {
				value = r.build(m.Loc()).Identifier("undefined")
			}
			if m.Static {
				r.addStatic(s, i, m.Key, value, ast.MethodNormal)
				continue
			}
			props = append(props, r.build(m.Loc()).ObjectProperty(m.Key, value, ast.PropertyInit))
		case *ast.Comment:
		default:
			r.logger.Warning("%s: unsupported class member in %s dropped", member.Loc(), s.ClassName)
		}
	}

	b := r.build(class.Loc())
	return b.CallExpression(
		ast.MemberChain(b, ast.DottedName(b, s.SuperClassName), "extend"),
		[]ast.Node{b.StringLiteral(s.FullClassName), b.ObjectExpression(props)},
	), nil
}

// resolveClass records the class and base class names. An anonymous class
// is named after its file.
func (r *Rewriter) resolveClass(s *State, class *ast.ClassDeclaration) error {
	name := ""
	if class.ID != nil {
		name = class.ID.Name
	} else {
		base := filepath.Base(s.FilePath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
		r.logger.Debug("%s: anonymous class named %q after its file", class.Loc(), name)
	}

	if class.SuperClass == nil {
		return errorAt(ErrMissingBaseClass, class.Loc(),
			"class %s must extend a base class", name)
	}
	super, ok := ast.DottedPath(class.SuperClass)
	if !ok {
		return errorAt(ErrMissingBaseClass, class.SuperClass.Loc(),
			"class %s must extend an identifier or dotted name", name)
	}

	s.setClass(name, super)
	return nil
}

// method converts a class method into a function expression. Static methods
// get their own strict mode directive.
func (r *Rewriter) method(m *ast.ClassMethod) *ast.FunctionExpression {
	b := r.build(m.Loc())
	var body []ast.Node
	if m.Static {
		body = append(body, b.ExpressionStatement(b.StringLiteral("use strict")))
	}
	if m.Body != nil {
		body = append(body, m.Body.Body...)
	}
	blockLoc := m.Loc()
	if m.Body != nil {
		blockLoc = m.Body.Loc()
	}

	fn := b.FunctionExpression(nil, m.Params, r.build(blockLoc).BlockStatement(body))
	fn.Async = m.Async
	fn.Generator = m.Generator
	return fn
}

// addStatic schedules a static member. Accessors with the same name merge
// into one property definition; a later plain member replaces an earlier
// one with the same name.
func (r *Rewriter) addStatic(s *State, index int, key, value ast.Node, kind ast.MethodKind) {
	name, ok := staticName(key)
	if !ok {
		name = fmt.Sprintf("[%d]", index)
	}

	member := Member{Key: key, Value: value}
	if kind != ast.MethodNormal {
		if prev, exists := s.StaticMembers.Get(name); exists && prev.IsAccessor() {
			member = prev
		}
		member.Key = key
		member.Value = nil
		fn, _ := value.(*ast.FunctionExpression)
		if kind == ast.MethodGetter {
			member.Getter = fn
		} else {
			member.Setter = fn
		}
	}
	if _, exists := s.StaticMembers.Get(name); exists && kind == ast.MethodNormal {
		r.logger.Warning("%s: static member %s of %s declared more than once", key.Loc(), name, s.ClassName)
	}
	s.StaticMembers.Set(name, member)
}

// staticName is the name a static member is scheduled under. Computed keys
// other than string literals have none.
func staticName(key ast.Node) (string, bool) {
	switch k := key.(type) {
	case *ast.Identifier:
		return k.Name, true
	case *ast.StringLiteral:
		return k.Value, true
	}
	return "", false
}

func propertyKind(kind ast.MethodKind) ast.PropertyKind {
	switch kind {
	case ast.MethodGetter:
		return ast.PropertyGet
	case ast.MethodSetter:
		return ast.PropertySet
	default:
		return ast.PropertyInit
	}
}
