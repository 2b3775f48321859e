// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package csvfile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/poiesic/crudstrategy/core"
)

// ErrMalformedLine indicates a line that is not "<uuid>,<fullname>".
var ErrMalformedLine = errors.New("malformed line")

const separator = ","

// MarshalLine serializes r as "<id>,<fullname>" without a trailing newline.
// No quoting or escaping is applied.
func MarshalLine(r core.Record) string {
	return r.RecordID().String() + separator + r.RecordName()
}

// ParseLine parses a line produced by MarshalLine. The line is split on the
// first comma only, so the fullname may itself contain commas.
// A trailing carriage return is ignored.
func ParseLine[T core.Record](kind core.Kind[T], line string) (T, error) {
	var zero T

	line = strings.TrimSuffix(line, "\r")
	idText, fullname, ok := strings.Cut(line, separator)
	if !ok {
		return zero, fmt.Errorf("%w: missing %q separator", ErrMalformedLine, separator)
	}

	id, err := uuid.Parse(idText)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ErrMalformedLine, err)
	}

	return kind.New(id, fullname), nil
}
