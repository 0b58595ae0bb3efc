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

import "bennypowers.dev/ui5ify/ast"

// RewriteSuperCall rewrites super(...) to Base.apply(this, [...]) and
// super.m(...) to Base.prototype.m.apply(this, [...]). A lone arguments
// argument to super(...) is passed through without wrapping. Other calls are
// returned unchanged.
func (r *Rewriter) RewriteSuperCall(s *State, call *ast.CallExpression) (ast.Node, error) {
	switch callee := call.Callee.(type) {
	case *ast.Super:
		if err := requireBase(s, call); err != nil {
			return nil, err
		}
		b := r.build(call.Loc())
		var args ast.Node = b.ArrayExpression(call.Arguments)
		if len(call.Arguments) == 1 {
			if id, ok := call.Arguments[0].(*ast.Identifier); ok && id.Name == "arguments" {
				args = id
			}
		}
		out := b.CallExpression(
			ast.MemberChain(b, ast.DottedName(b, s.SuperClassName), "apply"),
			[]ast.Node{b.ThisExpression(), args},
		)
		out.LeadingComments = call.LeadingComments
		return out, nil

	case *ast.MemberExpression:
		if _, ok := callee.Object.(*ast.Super); !ok {
			return call, nil
		}
		if err := requireBase(s, call); err != nil {
			return nil, err
		}
		b := r.build(call.Loc())
		proto := ast.MemberChain(b, ast.DottedName(b, s.SuperClassName), "prototype")
		method := b.MemberExpression(proto, callee.Property, callee.Computed)
		out := b.CallExpression(
			ast.MemberChain(b, method, "apply"),
			[]ast.Node{b.ThisExpression(), b.ArrayExpression(call.Arguments)},
		)
		out.LeadingComments = call.LeadingComments
		return out, nil
	}
	return call, nil
}

func requireBase(s *State, call *ast.CallExpression) error {
	if s.SuperClassName == "" {
		return errorAt(ErrIllegalSuper, call.Loc(),
			"super can only be used in a class that extends a base class")
	}
	return nil
}
