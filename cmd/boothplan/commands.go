/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"boothplan/internal/config"
	"boothplan/internal/crash"
	"boothplan/internal/editor"
	"boothplan/internal/export"
	"boothplan/internal/item"
	"boothplan/internal/storage"
	"boothplan/internal/vector"
	"boothplan/internal/version"
)

// openSession opens the layout under dir and loads it into a fresh session.
func (a *app) openSession(dir string) (*storage.Handle, *editor.Session, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, nil, err
	}
	h, err := storage.Open(abs)
	if err != nil {
		return nil, nil, err
	}
	lay, err := a.layouter()
	if err != nil {
		return nil, nil, err
	}
	sess, err := newSession(a.cfg, a.token, lay)
	if err != nil {
		return nil, nil, err
	}
	if err := sess.OpenDocument(h.Document); err != nil {
		return nil, nil, fmt.Errorf("load items: %w", err)
	}
	return h, sess, nil
}

// save writes the session back and records a history snapshot.
func (a *app) save(cmd *cobra.Command, h *storage.Handle, sess *editor.Session, label string) error {
	doc, err := sess.Document()
	if err != nil {
		return err
	}
	h.Document = doc
	if err := storage.Save(h); err != nil {
		return err
	}
	sess.MarkSaved()
	if err := storage.SaveSnapshot(cmd.Context(), h, label, doc.Items, time.Now()); err != nil {
		a.log.Warn("history snapshot failed", slog.Any("err", err))
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func newInitCommand(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "init <dir>",
		Short: "Create a new layout document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = filepath.Base(abs)
			}
			doc := storage.Document{Name: name}
			if a.cfg.Editor.CheckBounds {
				doc.EditableArea = storage.AreaOf(rectOf(a.cfg.Editor.EditableArea))
			}
			if _, err := storage.InitDocument(abs, doc); err != nil {
				return err
			}
			db, err := storage.OpenHistory(abs)
			if err != nil {
				return err
			}
			_ = db.Close()
			a.log.Info("init layout", slog.String("root", abs), slog.String("name", name))
			fmt.Fprintln(cmd.OutOrStdout(), "Created layout at", abs)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "layout name (defaults to the directory name)")
	return cmd
}

func newInfoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <dir>",
		Short: "Summarize a layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, sess, err := a.openSession(args[0])
			if err != nil {
				return err
			}
			defer crash.Recover(h, sess.Document)

			out := cmd.OutOrStdout()
			items := sess.Pool().Items()
			fmt.Fprintf(out, "Name: %s\n", sess.Name())
			fmt.Fprintf(out, "Path: %s\n", h.Path)
			fmt.Fprintf(out, "Items: %d\n", len(items))
			byKind := lo.CountValuesBy(items, func(it *item.Item) item.Kind { return it.Kind() })
			kinds := lo.Keys(byKind)
			slices.Sort(kinds)
			for _, k := range kinds {
				fmt.Fprintf(out, "  %s: %d\n", k, byKind[k])
			}
			fmt.Fprintf(out, "Colliding: %d\n", lo.CountBy(items, func(it *item.Item) bool { return it.Colliding() }))
			if pol := sess.Pool().Policy(); pol.CheckBounds {
				r := pol.EditableArea
				fmt.Fprintf(out, "Editable area: %g,%g %gx%g\n", r.X, r.Y, r.W, r.H)
			} else {
				fmt.Fprintln(out, "Editable area: off")
			}
			snap, ok, err := storage.LatestSnapshot(cmd.Context(), h)
			switch {
			case err != nil:
				a.log.Warn("history unavailable", slog.Any("err", err))
			case ok:
				fmt.Fprintf(out, "Last snapshot: %s %s (%d items)\n", snap.TS.Format(time.RFC3339), snap.Label, snap.Items)
			}
			return nil
		},
	}
}

func newCheckCommand(a *app) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check <dir>",
		Short: "Validate a layout file, its items and its history database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			data, err := os.ReadFile(filepath.Join(abs, storage.DocumentFileName))
			if err != nil {
				return err
			}
			if err := storage.ValidateDocument(data); err != nil {
				return err
			}
			fmt.Fprintln(out, "document: ok")

			_, sess, err := a.openSession(abs)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "items: ok (%d)\n", sess.Pool().Len())

			reset, err := storage.DetectAndResetHistory(cmd.Context(), abs)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			if reset {
				fmt.Fprintln(out, "history: corrupt, backed up and recreated")
			} else {
				fmt.Fprintln(out, "history: ok")
			}

			colliding := lo.Filter(sess.Pool().Items(), func(it *item.Item, _ int) bool { return it.Colliding() })
			for _, it := range colliding {
				fmt.Fprintf(out, "colliding: %s %s\n", it.Kind(), it.ID())
			}
			if strict && len(colliding) > 0 {
				return fmt.Errorf("%d colliding items", len(colliding))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when items collide")
	return cmd
}

func newExportCommand(a *app) *cobra.Command {
	var (
		formats []string
		outPath string
		preset  string
		scale   float64
		margin  float64
	)
	cmd := &cobra.Command{
		Use:   "export <dir>",
		Short: "Export a layout to SVG, PNG or PDF",
		Example: `  boothplan export hall --format svg
  boothplan export hall --format png --scale 2 --out hall.png
  boothplan export hall --preset print`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, sess, err := a.openSession(args[0])
			if err != nil {
				return err
			}
			defer crash.Recover(h, sess.Document)

			ds := sess.Pool().Drawables()
			lay, err := a.layouter()
			if err != nil {
				return err
			}
			opts := export.Options{Title: sess.Name(), Scale: scale, Margin: margin, Layouter: lay}
			var area *vector.Rect
			if pol := sess.Pool().Policy(); pol.CheckBounds {
				area = &pol.EditableArea
			}

			if preset != "" {
				dir := outPath
				if dir == "" {
					dir = filepath.Join(h.Root, "exports", preset)
				}
				var chosen []string
				if cmd.Flags().Changed("format") {
					chosen = formats
				}
				paths, err := export.BatchExport(ds, area, export.BatchOptions{
					Preset:  export.PresetName(preset),
					Formats: chosen,
					OutDir:  dir,
					Options: opts,
				})
				for _, p := range paths {
					fmt.Fprintln(cmd.OutOrStdout(), "Wrote", p)
				}
				return err
			}

			if len(formats) != 1 {
				return errors.New("export needs exactly one --format without --preset")
			}
			f, err := export.ParseFormat(formats[0])
			if err != nil {
				return err
			}
			opts.Guide = area
			if outPath == "" {
				outPath = filepath.Join(h.Root, "exports", "layout."+string(f))
			}
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return fmt.Errorf("ensure out dir: %w", err)
			}
			if err := export.Write(f, outPath, ds, opts); err != nil {
				return err
			}
			a.log.Info("exported", slog.String("format", string(f)), slog.String("path", outPath), slog.Int("items", len(ds)))
			fmt.Fprintln(cmd.OutOrStdout(), "Wrote", outPath)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&formats, "format", []string{"svg"}, "output format: svg, png or pdf")
	cmd.Flags().StringVar(&outPath, "out", "", "output file, or directory with --preset")
	cmd.Flags().StringVar(&preset, "preset", "", "export preset: web or print")
	cmd.Flags().Float64Var(&scale, "scale", 0, "output units per canvas unit")
	cmd.Flags().Float64Var(&margin, "margin", 0, "margin around the layout in canvas units")
	return cmd
}

func newImportRemoteCommand(a *app) *cobra.Command {
	var x, y float64
	cmd := &cobra.Command{
		Use:   "import-remote <dir> <url>",
		Short: "Fetch a remote booth group and place it into the layout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, sess, err := a.openSession(args[0])
			if err != nil {
				return err
			}
			defer crash.Recover(h, sess.Document)

			it, err := sess.LoadRemote(cmd.Context(), args[1], vector.Pt{X: x, Y: y})
			if err != nil {
				return err
			}
			if err := a.save(cmd, h, sess, "import-remote"); err != nil {
				return err
			}
			f := it.Frame()
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %d items at %g,%g %gx%g\n",
				it.ID(), len(it.Children()), f.Pos.X, f.Pos.Y, f.Size.W, f.Size.H)
			if it.Colliding() {
				fmt.Fprintln(cmd.OutOrStdout(), "warning: imported group collides with existing items")
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "placement x")
	cmd.Flags().Float64Var(&y, "y", 0, "placement y")
	return cmd
}

func newHistoryCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and manage layout snapshots",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list <dir>",
		Short: "List recent snapshots, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := storage.Open(args[0])
			if err != nil {
				return err
			}
			snaps, err := storage.ListSnapshots(cmd.Context(), h, limit)
			if err != nil {
				return err
			}
			for _, s := range snaps {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%d\n", s.ID, s.TS.Format(time.RFC3339), s.Label, s.Items)
			}
			return nil
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "maximum number of snapshots")

	var label string
	snapshot := &cobra.Command{
		Use:   "snapshot <dir>",
		Short: "Record the current layout in the history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := storage.Open(args[0])
			if err != nil {
				return err
			}
			return storage.SaveSnapshot(cmd.Context(), h, label, h.Document.Items, time.Now())
		},
	}
	snapshot.Flags().StringVar(&label, "label", "manual", "snapshot label")

	restore := &cobra.Command{
		Use:   "restore <dir>",
		Short: "Replace the layout items with the latest snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, sess, err := a.openSession(args[0])
			if err != nil {
				return err
			}
			snap, ok, err := storage.LatestSnapshot(cmd.Context(), h)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("no snapshots recorded")
			}
			m, err := snap.Memento()
			if err != nil {
				return err
			}
			doc := h.Document
			doc.Items = m
			if err := sess.OpenDocument(doc); err != nil {
				return err
			}
			h.Document = doc
			if err := storage.Save(h); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored snapshot %d (%d items)\n", snap.ID, sess.Pool().Len())
			return nil
		},
	}

	var keep int
	prune := &cobra.Command{
		Use:   "prune <dir>",
		Short: "Delete all but the newest snapshots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := storage.Open(args[0])
			if err != nil {
				return err
			}
			n, err := storage.PruneOldSnapshots(cmd.Context(), h, keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d snapshots\n", n)
			return nil
		},
	}
	prune.Flags().IntVar(&keep, "keep", 50, "snapshots to keep")

	cmd.AddCommand(list, snapshot, restore, prune)
	return cmd
}

func newTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the remote source token in the OS keychain",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <token>",
			Short: "Store the bearer token",
			Args:  cobra.ExactArgs(1),
			RunE:  func(_ *cobra.Command, args []string) error { return config.SetToken(args[0]) },
		},
		&cobra.Command{
			Use:   "delete",
			Short: "Remove the stored token",
			Args:  cobra.NoArgs,
			RunE:  func(_ *cobra.Command, _ []string) error { return config.DeleteToken() },
		},
	)
	return cmd
}
