/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package remote fetches item lists for remote composites over HTTP.
package remote

import (
	"context"
	"crypto/tls"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	gojsonschema "github.com/xeipuuv/gojsonschema"

	"boothplan/internal/item"
	applog "boothplan/internal/log"
)

//go:embed payload.schema.json
var payloadSchema []byte

// ErrInvalidPayload wraps schema violations in a remote response.
var ErrInvalidPayload = errors.New("remote: invalid payload")

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(payloadSchema))
})

// Options configures a Client.
type Options struct {
	Timeout     time.Duration
	TLSInsecure bool
	// Token is sent as a bearer token when non-empty.
	Token string
	// MaxBytes caps the response body; larger bodies are rejected.
	MaxBytes int64
}

// Client is a minimal HTTP client for remote item lists.
// It implements item.Source.
type Client struct {
	token    string
	maxBytes int64
	client   *http.Client
	log      *slog.Logger
}

var _ item.Source = (*Client)(nil)

// entry is one element of the wire payload.
type entry struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewClient creates a client. Zero options get a 15s timeout and an 8 MiB body cap.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 8 << 20
	}
	hc := &http.Client{Timeout: opts.Timeout}
	if opts.TLSInsecure {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // user opt-in
		hc.Transport = tr
	}
	return &Client{
		token:    opts.Token,
		maxBytes: opts.MaxBytes,
		client:   hc,
		log:      applog.WithComponent("remote"),
	}
}

// Fetch GETs url and returns its items as records. An empty array is valid.
func (c *Client) Fetch(ctx context.Context, url string) ([]item.Record, error) {
	l := applog.WithOperation(c.log, "fetch").With(slog.String("url", url))
	body, err := c.get(ctx, url)
	if err != nil {
		l.Warn("fetch failed", slog.Any("err", err))
		return nil, err
	}
	if err := validate(body); err != nil {
		l.Warn("payload rejected", slog.Any("err", err))
		return nil, err
	}
	var entries []entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	l.Debug("fetched", slog.Int("items", len(entries)))
	return lo.Map(entries, func(e entry, _ int) item.Record { return item.Record{Type: e.Type, State: e.Data} }), nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("server GET %s: %s", req.URL.Path, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrInvalidPayload, c.maxBytes)
	}
	return body, nil
}

func validate(body []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("load payload schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if !res.Valid() {
		msgs := lo.Map(res.Errors(), func(e gojsonschema.ResultError, _ int) string { return e.String() })
		return fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(msgs, "; "))
	}
	return nil
}
