/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package item

// Kind is the stable type string of an item variant. It doubles as the
// record type used in snapshots and remote payloads.
type Kind string

const (
	KindBox             Kind = "box"
	KindPhoto           Kind = "photo"
	KindDescription     Kind = "description"
	KindObstacle        Kind = "obstacle"
	KindRemoteComposite Kind = "remote-composite"
)

// Kinds lists every known kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindBox, KindPhoto, KindDescription, KindObstacle, KindRemoteComposite}
}

// TextPolicy decides how an item reacts when its text is re-measured.
type TextPolicy int

const (
	TextNone TextPolicy = iota
	// TextGrow resizes to max(current, measured+padding); never shrinks.
	TextGrow
	// TextBounded wraps at the current inner width and only grows the height.
	TextBounded
)

// Capabilities is the behaviour table of a kind.
type Capabilities struct {
	Collidable   bool
	TextEditable bool
	TextPolicy   TextPolicy
	Proportional bool // resize keeps aspect ratio
	Contained    bool // default for the editable-area containment policy
	Style        string
}

var capabilities = map[Kind]Capabilities{
	KindBox:             {Collidable: true, TextEditable: true, TextPolicy: TextBounded, Style: "booth"},
	KindPhoto:           {Proportional: true},
	KindDescription:     {TextEditable: true, TextPolicy: TextGrow, Style: "description"},
	KindObstacle:        {Collidable: true, Contained: true},
	KindRemoteComposite: {Collidable: true},
}

// Caps returns the capability table of k; unknown kinds get the zero table.
func (k Kind) Caps() Capabilities { return capabilities[k] }

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := capabilities[k]
	return ok
}
