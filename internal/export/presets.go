/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"boothplan/internal/render"
	"boothplan/internal/vector"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// Format is an output file format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// ErrUnknownFormat reports a format name no exporter handles.
var ErrUnknownFormat = errors.New("export: unknown format")

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatSVG, FormatPNG, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Write dispatches to the exporter for f.
func Write(f Format, path string, ds []render.Drawable, opts Options) error {
	switch f {
	case FormatSVG:
		return WriteSVG(path, ds, opts)
	case FormatPNG:
		return PNG(path, ds, opts)
	case FormatPDF:
		return PDF(path, ds, opts)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// BatchOptions controls batch export across formats.
//
// Files are named <BaseName>.<format> inside OutDir. Formats defaults to
// the preset's list. Options.Scale and Options.Guide are taken from the
// preset when left zero.
type BatchOptions struct {
	Preset   PresetName
	Formats  []string
	OutDir   string
	BaseName string
	Options  Options
}

// BatchExport writes ds once per format and returns the written paths.
func BatchExport(ds []render.Drawable, area *vector.Rect, opt BatchOptions) ([]string, error) {
	if opt.OutDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	base := opt.BaseName
	if base == "" {
		base = "layout"
	}
	if err := os.MkdirAll(opt.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}

	var paths []string
	for _, name := range formats {
		f, err := ParseFormat(name)
		if err != nil {
			return paths, err
		}
		o := opt.Options
		if o.Scale <= 0 {
			o.Scale = presetScale(opt.Preset, f)
		}
		if o.Guide == nil && presetIncludeGuides(opt.Preset) {
			o.Guide = area
		}
		out := filepath.Join(opt.OutDir, base+"."+string(f))
		if err := Write(f, out, ds, o); err != nil {
			return paths, fmt.Errorf("%s: %w", f, err)
		}
		paths = append(paths, out)
	}
	return paths, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "svg"}
	case PresetPrint:
		return []string{"pdf", "png"}
	default:
		return []string{"svg"}
	}
}

// presetScale is pixels per canvas unit for raster output; vector formats
// stay at 1.
func presetScale(p PresetName, f Format) float64 {
	if p == PresetPrint && f == FormatPNG {
		return 300.0 / 72.0
	}
	return 1
}

func presetIncludeGuides(p PresetName) bool {
	return p == PresetPrint
}
