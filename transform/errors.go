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

	"bennypowers.dev/ui5ify/ast"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrIllegalSuper is returned for a super call in a unit whose class has
	// not been lowered yet or has no base class.
	ErrIllegalSuper = errors.New("illegal super usage")
	// ErrMissingBaseClass is returned for an exported class that does not
	// extend an identifier or dotted name.
	ErrMissingBaseClass = errors.New("missing base class")
	// ErrImportOutsideRoot is returned for a relative import that cannot be
	// expressed relative to the project root.
	ErrImportOutsideRoot = errors.New("import outside project root")
	// ErrDuplicateBinding is returned when two imports bind the same name,
	// which would make the generated factory a strict-mode syntax error.
	ErrDuplicateBinding = errors.New("duplicate import binding")
)

// Error is a fatal, unit-scoped transform error located at the offending node.
type Error struct {
	Kind    error
	Loc     ast.Location
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func errorAt(kind error, loc ast.Location, format string, args ...any) *Error {
	return &Error{Kind: kind, Loc: loc, Message: fmt.Sprintf(format, args...)}
}
