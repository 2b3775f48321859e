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
	"context"

	"github.com/poiesic/crudstrategy/core"
)

// Store persists records of a single kind.
//
// Implementations are synchronous and blocking. They are not required to be
// safe for concurrent use; wrap them with Locked when sharing one instance.
type Store[T core.Record] interface {
	// Create persists a new record. The caller assigns the id.
	// Backends are not required to reject a duplicate id.
	Create(ctx context.Context, item T) error

	// ReadAll returns every persisted record in backend-defined order.
	// Missing storage yields an empty slice and a nil error, and is not created.
	ReadAll(ctx context.Context) ([]T, error)

	// Update replaces the fullname of the record whose id equals item's id.
	// A missing id is not an error and changes nothing.
	Update(ctx context.Context, item T) error

	// Delete removes the record whose id equals item's id.
	// A missing id is not an error and changes nothing.
	Delete(ctx context.Context, item T) error
}
