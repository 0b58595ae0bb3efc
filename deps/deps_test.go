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
package deps

import (
	"reflect"
	"strings"
	"testing"

	"bennypowers.dev/ui5ify/internal/mapfs"
)

func TestList(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/project/app/view/Main.js", `import Controller from "sap/ui/core/mvc/Controller";
import Formatter from "../model/formatter";
import { a, b } from "sap/base/util";
const lazy = () => import("./Lazy");
export default class Main extends Controller {}
`, 0644)
	mfs.AddFile("/project/lib/legacy.js", "sap.ui.define([], function () {});\n", 0644)
	mfs.AddFile("/project/app/Bad.js", "import A from \"../../../outside\";\nexport default class Bad extends A {}\n", 0644)

	entries, err := List(mfs, "/project", []string{
		"/project/app/view/Main.js",
		"/project/lib/legacy.js",
		"/project/app/Bad.js",
		"/project/missing.js",
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}

	main := entries[0]
	if !main.Module || main.Error != "" {
		t.Fatalf("unexpected entry %+v", main)
	}
	expected := []Dependency{
		{Name: "Controller", Source: "sap/ui/core/mvc/Controller"},
		{Name: "Formatter", Source: "app/model/formatter"},
		{Name: "util", Source: "sap/base/util"},
	}
	if !reflect.DeepEqual(main.Dependencies, expected) {
		t.Errorf("dependencies = %+v, expected %+v", main.Dependencies, expected)
	}
	if !reflect.DeepEqual(main.Dynamic, []string{"./Lazy"}) {
		t.Errorf("dynamic = %v", main.Dynamic)
	}

	legacy := entries[1]
	if legacy.Module || len(legacy.Dependencies) != 0 || legacy.Error != "" {
		t.Errorf("plain script should have no dependencies: %+v", legacy)
	}

	if bad := entries[2]; !strings.Contains(bad.Error, "outside") {
		t.Errorf("expected an outside-root error, got %+v", bad)
	}
	if missing := entries[3]; missing.Error == "" {
		t.Error("expected an error for a missing file")
	}
}
