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


package storage

import (
	"errors"

	"github.com/poiesic/crudstrategy/core"
)

var (
	// ErrNotFound indicates that the requested record was not found.
	// Reserved: the Store contract has no point-read, and Update/Delete
	// treat a missing id as success.
	ErrNotFound = errors.New("record not found")

	// ErrIO indicates a file system failure (permissions, missing path components).
	ErrIO = errors.New("storage i/o failure")

	// ErrBackend indicates an embedded database failure (bad SQL, constraint
	// violation, corrupt row).
	ErrBackend = errors.New("storage backend failure")

	// ErrUnknown is the catch-all for failures that fit no other category.
	ErrUnknown = errors.New("unknown storage failure")

	// ErrDuplicateKey indicates a duplicate key violation. Always reported
	// together with ErrBackend.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidRecord indicates a record the backend cannot represent.
	ErrInvalidRecord = core.ErrInvalidRecord

	// ErrUnknownBackend indicates an unrecognised backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
)
