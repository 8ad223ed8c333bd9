/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package item

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"boothplan/internal/textlayout"
	"boothplan/internal/vector"
)

// ErrUnknownType is returned by the factory for unregistered record types.
var ErrUnknownType = errors.New("item: unknown type")

// Record is one snapshot entry: a stable type string and the item's JSON state.
type Record struct {
	Type  string          `json:"type"`
	State json.RawMessage `json:"state"`
}

// Memento is an ordered, immutable capture of a pool. Treat it as read-only.
type Memento []Record

// Geometry is the serialized frame.
type Geometry struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Rotate float64 `json:"rotate,omitempty"`
}

func geometryOf(f vector.Frame) Geometry {
	return Geometry{X: f.Pos.X, Y: f.Pos.Y, Width: f.Size.W, Height: f.Size.H, Rotate: f.Rotate}
}

func (g Geometry) Frame() vector.Frame { return vector.F(g.X, g.Y, g.Width, g.Height, g.Rotate) }

type naturalSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// state is the JSON payload shared by all builtin kinds; unused fields are omitted.
type state struct {
	ID       string               `json:"id,omitempty"`
	Geometry Geometry             `json:"geometry"`
	Text     string               `json:"text,omitempty"`
	Font     *textlayout.FontSpec `json:"font,omitempty"`
	Padding  *float64             `json:"padding,omitempty"`
	Color    string               `json:"color,omitempty"`
	URL      string               `json:"url,omitempty"`
	Natural  *naturalSize         `json:"natural,omitempty"`
	Children []Record             `json:"children,omitempty"`
}

// Record captures the item as a snapshot entry.
func (it *Item) Record() (Record, error) {
	st := state{ID: it.id, Geometry: geometryOf(it.frame), URL: it.url}
	caps := it.Caps()
	if caps.TextEditable {
		st.Text = it.text
		font, pad := it.font, it.padding
		st.Font, st.Padding = &font, &pad
	}
	if !it.color.IsZero() {
		st.Color = it.color.Hex()
	}
	if c := it.composite; c != nil {
		if c.loaded {
			st.Natural = &naturalSize{Width: c.natural.W, Height: c.natural.H}
		}
		for _, ch := range c.children {
			r, err := ch.Record()
			if err != nil {
				return Record{}, err
			}
			st.Children = append(st.Children, r)
		}
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return Record{}, fmt.Errorf("marshal %s %s: %w", it.kind, it.id, err)
	}
	return Record{Type: string(it.kind), State: raw}, nil
}

// Decoder rebuilds an item from its JSON state.
type Decoder func(f *Factory, raw json.RawMessage) (*Item, error)

// Factory maps record types to decoders.
type Factory struct {
	decoders map[string]Decoder
}

// NewFactory returns a factory knowing every builtin kind.
func NewFactory() *Factory {
	f := &Factory{decoders: map[string]Decoder{}}
	for _, k := range Kinds() {
		f.Register(string(k), builtinDecoder(k))
	}
	return f
}

// Register installs or replaces the decoder for typ.
func (f *Factory) Register(typ string, d Decoder) { f.decoders[typ] = d }

// Build reconstructs one item. Records without an id get a fresh one.
func (f *Factory) Build(r Record) (*Item, error) {
	d, ok := f.decoders[r.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, r.Type)
	}
	it, err := d(f, r.State)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.Type, err)
	}
	return it, nil
}

// BuildAll reconstructs records in order and fails on the first error.
func (f *Factory) BuildAll(rs []Record) ([]*Item, error) {
	out := make([]*Item, 0, len(rs))
	for i, r := range rs {
		it, err := f.Build(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, it)
	}
	return out, nil
}

func builtinDecoder(k Kind) Decoder {
	return func(f *Factory, raw json.RawMessage) (*Item, error) {
		var st state
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &st); err != nil {
				return nil, err
			}
		}
		id := st.ID
		if id == "" {
			id = uuid.NewString()
		}
		it := newWithID(id, k, st.Geometry.Frame())
		it.url = st.URL
		if k.Caps().TextEditable {
			it.text = st.Text
			if st.Font != nil {
				it.font = *st.Font
			}
			if st.Padding != nil {
				it.padding = *st.Padding
			}
		}
		if st.Color != "" {
			c, err := vector.ParseHex(st.Color)
			if err != nil {
				return nil, err
			}
			it.color = c
		}
		if k == KindRemoteComposite {
			children, err := f.BuildAll(st.Children)
			if err != nil {
				return nil, fmt.Errorf("children: %w", err)
			}
			it.composite.children = children
			if st.Natural != nil {
				it.composite.loaded = true
				it.composite.natural = vector.Size{W: st.Natural.Width, H: st.Natural.Height}
			}
		}
		return it, nil
	}
}

// Capture records every item in order.
func Capture(items []*Item) (Memento, error) {
	m := make(Memento, 0, len(items))
	for _, it := range items {
		r, err := it.Record()
		if err != nil {
			return nil, err
		}
		m = append(m, r)
	}
	return m, nil
}
