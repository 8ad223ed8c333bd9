/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report plus an autosave of the
// open layout.
package crash

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "boothplan/internal/log"
	"boothplan/internal/storage"
	"boothplan/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// DocumentFunc returns the live document so the autosave carries unsaved edits.
type DocumentFunc func() (storage.Document, error)

// Recover captures a panic, logs it with the stack, writes a crash report and
// autosaves the document of h. When current is set its result replaces
// h.Document first.
//
// Usage: defer crash.Recover(h, session.Document)
func Recover(h *storage.Handle, current DocumentFunc) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(h, r, stack)
	if err != nil {
		l.Error("crash report failed", slog.Any("err", err))
	}
	if h != nil {
		if current != nil {
			if doc, err := liveDocument(current); err != nil {
				l.Warn("live document unavailable, autosaving last known state", slog.Any("err", err))
			} else {
				h.Document = doc
			}
		}
		if path, err := storage.AutosaveCrashSnapshot(h); err != nil {
			l.Error("autosave crash snapshot failed", slog.Any("err", err))
		} else {
			l.Info("autosave crash snapshot written", slog.String("path", path))
		}
	}

	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
		l.Error("failed to write version info to stderr", slog.Any("err", err))
	}
	exitFn(2)
}

// liveDocument calls fn, turning a second panic into an error.
func liveDocument(fn DocumentFunc) (doc storage.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("document snapshot panicked: %v", r)
		}
	}()
	return fn()
}

func writeReport(h *storage.Handle, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if h != nil && h.Root != "" {
		dir = filepath.Join(h.Root, storage.BackupsDirName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("ensure backups dir: %w", err)
		}
	}
	now := time.Now()
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", now.Format("20060102-150405.000")))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "BoothPlan Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", now.Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if h != nil {
		_, _ = fmt.Fprintf(&buf, "DocumentRoot: %s\n", h.Root)
		_, _ = fmt.Fprintf(&buf, "Document: %s\n", h.Path)
		_, _ = fmt.Fprintf(&buf, "Items: %d\n", len(h.Document.Items))
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	_, werr := f.Write(buf.Bytes())
	serr := f.Sync()
	cerr := f.Close()
	return path, errors.Join(werr, serr, cerr)
}
