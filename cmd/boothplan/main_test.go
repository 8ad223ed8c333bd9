/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"boothplan/internal/config"
	"boothplan/internal/export"
	"boothplan/internal/item"
	"boothplan/internal/storage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvConfigFile, filepath.Join(t.TempDir(), "config.yaml"))
	keyring.MockInit()
	cmd := newRootCommand()
	var out, stderr bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func initLayout(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "hall")
	out, err := run(t, "init", dir, "--name", "Hall A")
	require.NoError(t, err)
	require.Contains(t, out, "Created layout at")
	return dir
}

func remoteServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"type":"box","data":{"geometry":{"x":0,"y":0,"width":40,"height":20},"text":"A1"}},
			{"type":"obstacle","data":{"geometry":{"x":50,"y":0,"width":10,"height":10}}}
		]`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.NotEmpty(t, out)
}

func TestInitAndInfo(t *testing.T) {
	dir := initLayout(t)
	require.FileExists(t, filepath.Join(dir, storage.DocumentFileName))
	require.FileExists(t, storage.HistoryPath(dir))

	out, err := run(t, "info", dir)
	require.NoError(t, err)
	require.Contains(t, out, "Name: Hall A")
	require.Contains(t, out, "Items: 0")
	require.Contains(t, out, "Editable area: off")
}

func TestCheckValidAndInvalid(t *testing.T) {
	dir := initLayout(t)
	out, err := run(t, "check", dir)
	require.NoError(t, err)
	require.Contains(t, out, "document: ok")
	require.Contains(t, out, "history: ok")

	require.NoError(t, os.WriteFile(filepath.Join(dir, storage.DocumentFileName), []byte(`{"name":"x"}`), 0o644))
	_, err = run(t, "check", dir)
	require.ErrorIs(t, err, storage.ErrInvalidDocument)
}

func TestImportRemoteSavesAndRecordsHistory(t *testing.T) {
	dir := initLayout(t)
	srv := remoteServer(t)

	out, err := run(t, "import-remote", dir, srv.URL, "--x", "100", "--y", "50")
	require.NoError(t, err)
	require.Contains(t, out, "2 items at 100,50")

	h, err := storage.Open(dir)
	require.NoError(t, err)
	require.Len(t, h.Document.Items, 1)
	require.Equal(t, string(item.KindRemoteComposite), h.Document.Items[0].Type)

	out, err = run(t, "info", dir)
	require.NoError(t, err)
	require.Contains(t, out, "remote-composite: 1")
	require.Contains(t, out, "Last snapshot:")

	out, err = run(t, "history", "list", dir)
	require.NoError(t, err)
	require.Contains(t, out, "import-remote")
}

func TestImportRemoteFailureLeavesLayout(t *testing.T) {
	dir := initLayout(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	_, err := run(t, "import-remote", dir, srv.URL)
	require.Error(t, err)

	h, err := storage.Open(dir)
	require.NoError(t, err)
	require.Empty(t, h.Document.Items)
}

func TestExportFormats(t *testing.T) {
	dir := initLayout(t)

	_, err := run(t, "export", dir)
	require.True(t, errors.Is(err, export.ErrEmpty), "empty layout: %v", err)

	srv := remoteServer(t)
	_, err = run(t, "import-remote", dir, srv.URL)
	require.NoError(t, err)

	out, err := run(t, "export", dir)
	require.NoError(t, err)
	require.Contains(t, out, "layout.svg")
	require.FileExists(t, filepath.Join(dir, "exports", "layout.svg"))

	pdf := filepath.Join(t.TempDir(), "hall.pdf")
	_, err = run(t, "export", dir, "--format", "pdf", "--out", pdf)
	require.NoError(t, err)
	require.FileExists(t, pdf)

	_, err = run(t, "export", dir, "--preset", "web")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "exports", "web", "layout.png"))
	require.FileExists(t, filepath.Join(dir, "exports", "web", "layout.svg"))

	_, err = run(t, "export", dir, "--format", "cbz")
	require.ErrorIs(t, err, export.ErrUnknownFormat)
}

func TestHistorySnapshotRestorePrune(t *testing.T) {
	dir := initLayout(t)
	_, err := run(t, "history", "snapshot", dir, "--label", "empty")
	require.NoError(t, err)

	srv := remoteServer(t)
	_, err = run(t, "import-remote", dir, srv.URL)
	require.NoError(t, err)

	// The newest snapshot is the import; restoring keeps its single group.
	out, err := run(t, "history", "restore", dir)
	require.NoError(t, err)
	require.Contains(t, out, "(1 items)")

	out, err = run(t, "history", "prune", dir, "--keep", "1")
	require.NoError(t, err)
	require.Contains(t, out, "Pruned 1 snapshots")
}

func TestTokenCommands(t *testing.T) {
	_, err := run(t, "token", "set", "s3cret")
	require.NoError(t, err)
	tok, err := config.Token()
	require.NoError(t, err)
	require.Equal(t, "s3cret", tok)

	_, err = run(t, "token", "delete")
	require.NoError(t, err)
	tok, err = config.Token()
	require.NoError(t, err)
	require.Empty(t, tok)
}

func TestPolicyFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Editor.CheckBounds = true
	cfg.Editor.Snap.Edges = true
	pol, err := policyFrom(cfg.Editor)
	require.NoError(t, err)
	require.True(t, pol.CheckBounds)
	require.Equal(t, 2000.0, pol.EditableArea.W)
	require.True(t, pol.ContainKinds[item.KindObstacle])
	require.True(t, pol.Snap.SnapToEdges)

	cfg.Editor.ContainKinds = []string{"stage"}
	_, err = policyFrom(cfg.Editor)
	require.Error(t, err)
	_, err = poolOptions(cfg)
	require.Error(t, err)
}

func TestTextWiring(t *testing.T) {
	text := config.TextConfig{
		Styles: map[string]config.StyleConfig{"booth": {Family: "Inter", Size: 18, Padding: 3}},
	}
	sheet := styleSheet(text)
	st, ok := sheet.Resolve("booth")
	require.True(t, ok)
	require.Equal(t, 18.0, st.Font.SizePt)
	require.Equal(t, 3.0, st.Padding)

	lay, err := textLayouter(text)
	require.NoError(t, err)
	box, err := lay.Layout("Hall A", st.Font, 0)
	require.NoError(t, err)
	require.Len(t, box.Lines, 1)

	text.Fonts = []config.FontFileConfig{{Family: "Inter", Path: filepath.Join(t.TempDir(), "missing.ttf")}}
	_, err = textLayouter(text)
	require.Error(t, err)
}
