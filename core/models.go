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

import "github.com/google/uuid"

// Record is implemented by every entity a storage.Store can persist.
// A record is an opaque identifier plus a display name.
type Record interface {
	RecordID() uuid.UUID
	RecordName() string
}

// User is a person known to the application.
type User struct {
	ID       uuid.UUID `json:"id"`
	Fullname string    `json:"fullname"`
}

// NewUser returns a User with a freshly generated identifier.
func NewUser(fullname string) User {
	return User{ID: uuid.New(), Fullname: fullname}
}

func (u User) RecordID() uuid.UUID { return u.ID }
func (u User) RecordName() string  { return u.Fullname }

func (u User) String() string {
	return "Full name: " + u.Fullname
}

// Account is structurally identical to User but persisted separately.
type Account struct {
	ID       uuid.UUID `json:"id"`
	Fullname string    `json:"fullname"`
}

// NewAccount returns an Account with a freshly generated identifier.
func NewAccount(fullname string) Account {
	return Account{ID: uuid.New(), Fullname: fullname}
}

func (a Account) RecordID() uuid.UUID { return a.ID }
func (a Account) RecordName() string  { return a.Fullname }

func (a Account) String() string {
	return "Full name: " + a.Fullname
}

// Kind describes one record type: how it is named in routes and tables,
// and how a backend rebuilds a value from its stored fields.
type Kind[T Record] struct {
	// Name is the singular, human readable name ("user").
	Name string
	// Table is the plural name used for SQL tables, file names and URL paths ("users").
	Table string
	// New builds a record from its persisted fields.
	New func(id uuid.UUID, fullname string) T
}

var (
	UserKind = Kind[User]{
		Name:  "user",
		Table: "users",
		New: func(id uuid.UUID, fullname string) User {
			return User{ID: id, Fullname: fullname}
		},
	}

	AccountKind = Kind[Account]{
		Name:  "account",
		Table: "accounts",
		New: func(id uuid.UUID, fullname string) Account {
			return Account{ID: id, Fullname: fullname}
		},
	}
)
