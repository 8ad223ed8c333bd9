/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "testing"

func TestBuiltinStyles(t *testing.T) {
	for _, name := range ListStyles() {
		st, ok := GetStyle(name)
		if !ok || st.Name != name || st.Font.SizePt <= 0 {
			t.Fatalf("bad builtin %q: %+v", name, st)
		}
	}
	if _, ok := GetStyle("nope"); ok {
		t.Fatalf("unexpected style")
	}
}

func TestStyleSheet_Precedence(t *testing.T) {
	ss := NewStyleSheet()
	ss.Global["booth"] = TextStyle{Name: "booth", Padding: 1}
	doc := ss.WithDocument(map[string]TextStyle{"description": {Name: "description", Padding: 9}})

	if st, _ := doc.Resolve("booth"); st.Padding != 1 {
		t.Fatalf("global override lost: %+v", st)
	}
	if st, _ := doc.Resolve("description"); st.Padding != 9 {
		t.Fatalf("document override lost: %+v", st)
	}
	if st, _ := ss.Resolve("description"); st.Padding != 4 {
		t.Fatalf("WithDocument must not mutate receiver: %+v", st)
	}
	var nilSheet *StyleSheet
	if _, ok := nilSheet.Resolve("booth"); !ok {
		t.Fatalf("nil sheet should resolve builtins")
	}
}
