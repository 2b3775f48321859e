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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidRecord indicates a User or Account failed validation.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrEmptyID indicates the record has the nil UUID as its identifier.
	ErrEmptyID = errors.New("id cannot be the nil uuid")

	// ErrInvalidName indicates the Fullname contains a line break.
	ErrInvalidName = errors.New("fullname cannot contain line breaks")
)
