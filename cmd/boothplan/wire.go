/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"strings"

	"boothplan/internal/config"
	"boothplan/internal/editor"
	"boothplan/internal/interact"
	"boothplan/internal/item"
	applog "boothplan/internal/log"
	"boothplan/internal/pool"
	"boothplan/internal/remote"
	"boothplan/internal/textlayout"
	"boothplan/internal/undo"
	"boothplan/internal/vector"
)

func rectOf(r config.RectConfig) vector.Rect { return vector.R(r.X, r.Y, r.Width, r.Height) }

func policyFrom(c config.EditorConfig) (interact.Policy, error) {
	pol := interact.Policy{
		HandleSize:    c.HandleSize,
		RotateOffset:  c.RotateOffset,
		MinSize:       c.MinSize,
		MinGroupSize:  c.MinGroupSize,
		CheckBounds:   c.CheckBounds,
		EditableArea:  rectOf(c.EditableArea),
		ContainGroups: c.ContainGroups,
		ContainKinds:  map[item.Kind]bool{},
		Snap: vector.SnapOptions{
			Threshold:     c.Snap.Threshold,
			SnapToEdges:   c.Snap.Edges,
			SnapToCenters: c.Snap.Centers,
		},
	}
	for _, name := range c.ContainKinds {
		k := item.Kind(strings.TrimSpace(name))
		if !k.Valid() {
			return interact.Policy{}, fmt.Errorf("config: unknown kind %q in editor.contain_kinds", name)
		}
		pol.ContainKinds[k] = true
	}
	return pol, nil
}

func poolOptions(cfg config.AppConfig) (pool.Options, error) {
	pol, err := policyFrom(cfg.Editor)
	if err != nil {
		return pool.Options{}, err
	}
	opts := pool.DefaultOptions()
	opts.Bounds = rectOf(cfg.Index.Bounds)
	opts.MaxObjects = cfg.Index.MaxObjects
	opts.MaxLevels = cfg.Index.MaxLevels
	opts.Display = pool.DisplayFlags{
		ShowObstacle: cfg.Display.ShowObstacle,
		ShowText:     cfg.Display.ShowText,
		ShowPhoto:    cfg.Display.ShowPhoto,
	}
	opts.Interact.Policy = pol
	return opts, nil
}

func undoConfig(c config.UndoConfig) undo.Config {
	return undo.Config{MaxBytes: c.MaxBytes, MaxDepth: c.MaxDepth, MinInterval: c.Coalesce()}
}

func logOptions(c config.LoggingConfig) applog.Options {
	return applog.Options{
		Level:      c.Level,
		Format:     c.Format,
		AddSource:  c.Source,
		File:       c.File,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
	}
}

func remoteOptions(c config.RemoteConfig, token string) remote.Options {
	return remote.Options{
		Timeout:     c.Timeout(),
		TLSInsecure: c.TLSInsecure,
		Token:       token,
		MaxBytes:    int64(c.MaxBytes),
	}
}

// textLayouter measures with the configured font files and falls back to
// the basic face for unknown families.
func textLayouter(c config.TextConfig) (textlayout.Layouter, error) {
	if len(c.Fonts) == 0 {
		return textlayout.NewWordWrap(textlayout.BasicProvider{}), nil
	}
	lib := textlayout.NewFontLibrary()
	for _, f := range c.Fonts {
		if err := lib.LoadFile(f.Family, f.Weight, f.Italic, f.Path); err != nil {
			return nil, fmt.Errorf("config: font %s: %w", f.Family, err)
		}
	}
	return textlayout.NewWordWrap(textlayout.OTProvider{Lib: lib}), nil
}

func styleSheet(c config.TextConfig) *textlayout.StyleSheet {
	sheet := textlayout.NewStyleSheet()
	for name, st := range c.Styles {
		sheet.Global[name] = textlayout.TextStyle{
			Name:    name,
			Font:    textlayout.FontSpec{Family: st.Family, SizePt: st.Size, Weight: st.Weight, Italic: st.Italic},
			Leading: st.Leading,
			Padding: st.Padding,
		}
	}
	return sheet
}

// newSession builds an editor session from the user config. The remote
// client always carries the keyring token.
func newSession(cfg config.AppConfig, token string, lay textlayout.Layouter) (*editor.Session, error) {
	popts, err := poolOptions(cfg)
	if err != nil {
		return nil, err
	}
	popts.Interact.Layouter = lay
	return editor.New(editor.Options{
		Pool:   popts,
		Undo:   undoConfig(cfg.Undo),
		Source: remote.NewClient(remoteOptions(cfg.Remote, token)),
		Styles: styleSheet(cfg.Text),
	}), nil
}
