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
	"fmt"
	"strings"
)

// Backend names a Store implementation.
type Backend string

const (
	// BackendCSV stores records in a comma separated text file, one per line.
	BackendCSV Backend = "csv"
	// BackendSQLite stores records in an SQLite database, one table per kind.
	BackendSQLite Backend = "sqlite"
)

// Backends lists every supported backend.
var Backends = []Backend{BackendCSV, BackendSQLite}

// ParseBackend converts a case-insensitive name into a Backend.
func ParseBackend(name string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(name))); b {
	case BackendCSV, BackendSQLite:
		return b, nil
	default:
		return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnknownBackend, name, joinBackends())
	}
}

// DefaultPath returns the file the backend uses when none is configured.
func (b Backend) DefaultPath() string {
	switch b {
	case BackendSQLite:
		return "crudstrategy.sqlite"
	default:
		return "crudstrategy.csv"
	}
}

func (b Backend) String() string {
	return string(b)
}

func joinBackends() string {
	names := make([]string, len(Backends))
	for i, b := range Backends {
		names[i] = string(b)
	}
	return strings.Join(names, ", ")
}
