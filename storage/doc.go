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


// Package storage provides the storage abstraction layer for crudstrategy.
//
// This package defines a single generic contract, Store, that decouples the
// HTTP layer from the persistence mechanism. Two implementations exist and
// are selected at startup (strategy pattern):
//
//   - csvfile: a flat, line-oriented text file, one "<id>,<fullname>" per line
//   - sqlite: an embedded SQLite database, one table per record kind
//
// # Constructor Return Type Pattern
//
// Backend constructors return the storage.Store interface so callers cannot
// couple to a specific backend:
//
//	users := csvfile.New(core.UserKind, "users.csv")   // storage.Store[core.User]
//	users := sqlite.New(core.UserKind, "app.sqlite")   // storage.Store[core.User]
//
// Swapping one for the other requires no change at any call site.
//
// # Errors
//
// Every failure is reported through the sentinels in errors.go and can be
// inspected with errors.Is. File system failures wrap ErrIO, embedded
// database failures wrap ErrBackend. Nothing is retried.
//
// # Thread Safety
//
// Backends are synchronous and hold no state between calls beyond a path.
// They do not coordinate concurrent callers; share a single instance through
// Locked, which serializes every operation behind a mutex.
//
// # Context Support
//
// All Store methods accept context.Context. An already cancelled context
// fails fast; otherwise operations run to completion.
package storage
