/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"
	gojsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed layout.schema.json
var layoutSchema []byte

// ErrInvalidDocument wraps schema violations found by ValidateDocument.
var ErrInvalidDocument = errors.New("storage: document does not match schema")

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(layoutSchema))
})

// ValidateDocument checks raw layout.json bytes against the embedded schema.
func ValidateDocument(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("load layout schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate document: %w", err)
	}
	if !res.Valid() {
		msgs := lo.Map(res.Errors(), func(e gojsonschema.ResultError, _ int) string { return e.String() })
		return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
	}
	return nil
}
