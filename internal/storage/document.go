/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"boothplan/internal/item"
	applog "boothplan/internal/log"
	"boothplan/internal/vector"
)

const (
	DocumentFileName = "layout.json"
	BackupsDirName   = "backups"

	// FormatVersion is written into every saved document.
	FormatVersion = 1
)

var standardSubDirs = []string{
	"assets",
	"exports",
	BackupsDirName,
}

// Area is the JSON form of an axis-aligned rectangle.
type Area struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func AreaOf(r vector.Rect) *Area { return &Area{X: r.X, Y: r.Y, Width: r.W, Height: r.H} }

func (a Area) Rect() vector.Rect { return vector.R(a.X, a.Y, a.Width, a.Height) }

// Document is the persisted form of one layout. A nil EditableArea
// disables the containment check.
type Document struct {
	Version      int          `json:"version"`
	Name         string       `json:"name"`
	EditableArea *Area        `json:"editableArea,omitempty"`
	Items        item.Memento `json:"items"`
}

// Handle keeps track of a document loaded from or saved to disk.
// Root is the directory containing layout.json and its subfolders.
type Handle struct {
	Root     string
	Path     string
	Document Document
}

// InitDocument creates a document directory at root (creating it if it doesn't exist),
// scaffolds the standard subfolders, and writes the document transactionally.
func InitDocument(root string, doc Document) (*Handle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := scaffold(root); err != nil {
		return nil, err
	}
	h := &Handle{
		Root:     root,
		Path:     filepath.Join(root, DocumentFileName),
		Document: doc,
	}
	if err := Save(h); err != nil {
		return nil, err
	}
	return h, nil
}

// Open loads an existing document from root.
// If the current file cannot be read or parsed, it will attempt the latest backup.
func Open(root string) (*Handle, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(slog.String("root", root))
	path := filepath.Join(root, DocumentFileName)
	b, err := os.ReadFile(path)
	if err == nil {
		var doc Document
		if err = json.Unmarshal(b, &doc); err == nil {
			return &Handle{Root: root, Path: path, Document: doc}, nil
		}
		err = fmt.Errorf("parse document: %w", err)
	} else {
		err = fmt.Errorf("open document: %w", err)
	}
	doc, berr := openFromLatestBackup(root)
	if berr != nil {
		return nil, fmt.Errorf("%w; backup attempt: %v", err, berr)
	}
	l.Warn("document unreadable, opened latest backup", slog.Any("err", err))
	return &Handle{Root: root, Path: path, Document: *doc}, nil
}

// Save writes h.Document to disk with transactional semantics
// and a timestamped backup of the previous file (if present).
func Save(h *Handle) error {
	if h == nil {
		return errors.New("nil Handle")
	}
	if h.Root == "" || h.Path == "" {
		return errors.New("invalid Handle: missing paths")
	}
	h.Document.Version = FormatVersion
	if h.Document.Items == nil {
		h.Document.Items = item.Memento{}
	}
	data, err := json.MarshalIndent(h.Document, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}

	if _, statErr := os.Stat(h.Path); statErr == nil {
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", DocumentFileName, stamp()))
		if cerr := copyFile(h.Path, bpath); cerr != nil {
			return fmt.Errorf("backup current document: %w", cerr)
		}
	}

	// Write to a temp file in the same directory, then rename over the target.
	dir := filepath.Dir(h.Path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", DocumentFileName, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp document: %w", werr)
	}
	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(h.Path); err == nil {
		_ = os.Remove(h.Path)
	}
	if rerr := os.Rename(temp, h.Path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace document: %w", rerr)
	}
	return nil
}

// SaveAs writes the document to a new root folder, scaffolding structure if needed, and updates the handle.
func SaveAs(h *Handle, newRoot string) error {
	if h == nil {
		return errors.New("nil Handle")
	}
	if newRoot == "" {
		return errors.New("new root is empty")
	}
	if err := scaffold(newRoot); err != nil {
		return err
	}
	h.Root = newRoot
	h.Path = filepath.Join(newRoot, DocumentFileName)
	return Save(h)
}

// AutosaveCrashSnapshot writes the in-memory document next to the backups
// without touching layout.json. Crash files never take part in backup fallback.
func AutosaveCrashSnapshot(h *Handle) (string, error) {
	if h == nil || h.Root == "" {
		return "", errors.New("invalid Handle: missing root")
	}
	data, err := json.MarshalIndent(h.Document, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal crash snapshot: %w", err)
	}
	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	path := filepath.Join(bdir, fmt.Sprintf("%s.crash-%s.json", DocumentFileName, stamp()))
	if err := writeFileSync(path, append(data, '\n')); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return path, nil
}

func scaffold(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create document root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	return nil
}

// stamp sorts lexicographically; nanoseconds keep rapid saves apart.
func stamp() string { return time.Now().Format("20060102-150405.000000000") }

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

// openFromLatestBackup tries to open the latest timestamped backup.
func openFromLatestBackup(root string) (*Document, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, DocumentFileName+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	sort.Strings(candidates)
	latest := candidates[len(candidates)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return &doc, nil
}
