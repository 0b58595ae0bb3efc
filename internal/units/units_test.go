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
package units

import (
	"reflect"
	"testing"
	"testing/fstest"
)

func tree() fstest.MapFS {
	return fstest.MapFS{
		"app/Component.js":            {Data: []byte("")},
		"app/view/Main.controller.ts": {Data: []byte("")},
		"app/view/Main.view.xml":      {Data: []byte("")},
		"dist/app/Component.js":       {Data: []byte("")},
		"node_modules/lib/index.js":   {Data: []byte("")},
		"README.md":                   {Data: []byte("")},
	}
}

func TestFilesFromGlob(t *testing.T) {
	s, err := NewSelector("/project", "", "/project/dist")
	if err != nil {
		t.Fatalf("NewSelector failed: %v", err)
	}
	s.FS = tree()

	files, err := s.Files(nil)
	if err != nil {
		t.Fatalf("Files failed: %v", err)
	}
	expected := []string{"/project/app/Component.js", "/project/app/view/Main.controller.ts"}
	if !reflect.DeepEqual(files, expected) {
		t.Errorf("Files() = %v, expected %v", files, expected)
	}
}

func TestFilesFromArgs(t *testing.T) {
	s, err := NewSelector("/project", "")
	if err != nil {
		t.Fatalf("NewSelector failed: %v", err)
	}
	files, err := s.Files([]string{"/project/b.js", "/project/a.js", "/project/b.js"})
	if err != nil {
		t.Fatalf("Files failed: %v", err)
	}
	if !reflect.DeepEqual(files, []string{"/project/a.js", "/project/b.js"}) {
		t.Errorf("unexpected files %v", files)
	}
}

func TestMatch(t *testing.T) {
	s, err := NewSelector("/project", "app/**/*.js", "dist")
	if err != nil {
		t.Fatalf("NewSelector failed: %v", err)
	}
	tests := []struct {
		path     string
		expected bool
	}{
		{"/project/app/Component.js", true},
		{"/project/app/view/Main.js", true},
		{"/project/app/view/Main.ts", false},
		{"/project/dist/app/Component.js", false},
		{"/project/app/node_modules/x.js", false},
		{"/elsewhere/app/A.js", false},
	}
	for _, tt := range tests {
		if got := s.Match(tt.path); got != tt.expected {
			t.Errorf("Match(%q) = %v, expected %v", tt.path, got, tt.expected)
		}
	}
}

func TestInvalidGlob(t *testing.T) {
	if _, err := NewSelector("/project", "app/[.js"); err == nil {
		t.Error("expected an error for an invalid glob")
	}
}
