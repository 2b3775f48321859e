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
	"sync"

	"github.com/poiesic/crudstrategy/core"
)

// LockedStore serializes every call to the wrapped Store with a mutex, so
// operations observe a total order regardless of how many goroutines share it.
type LockedStore[T core.Record] struct {
	mu    sync.Mutex
	store Store[T]
}

var _ Store[core.User] = (*LockedStore[core.User])(nil)

// Locked wraps store for shared use.
func Locked[T core.Record](store Store[T]) *LockedStore[T] {
	return &LockedStore[T]{store: store}
}

func (l *LockedStore[T]) Create(ctx context.Context, item T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Create(ctx, item)
}

func (l *LockedStore[T]) ReadAll(ctx context.Context) ([]T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.ReadAll(ctx)
}

func (l *LockedStore[T]) Update(ctx context.Context, item T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Update(ctx, item)
}

func (l *LockedStore[T]) Delete(ctx context.Context, item T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Delete(ctx, item)
}
