package core

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewUser_GeneratesDistinctIDs(t *testing.T) {
	u1 := NewUser("Jane Doe")
	u2 := NewUser("Jane Doe")

	if u1.ID == uuid.Nil {
		t.Errorf("NewUser() produced the nil uuid")
	}
	if u1.ID == u2.ID {
		t.Errorf("NewUser() produced the same ID twice: %s", u1.ID)
	}
	if u1.Fullname != "Jane Doe" {
		t.Errorf("NewUser() fullname = %q, want %q", u1.Fullname, "Jane Doe")
	}
}

func TestNewAccount_GeneratesDistinctIDs(t *testing.T) {
	a1 := NewAccount("Test Account")
	a2 := NewAccount("Test Account")

	if a1.ID == a2.ID {
		t.Errorf("NewAccount() produced the same ID twice: %s", a1.ID)
	}
}

func TestKind_New(t *testing.T) {
	id := uuid.MustParse("67e55044-10b1-426f-9247-bb680e5fe0c8")

	tests := []struct {
		name  string
		build func() Record
		table string
	}{
		{
			name:  "user kind",
			build: func() Record { return UserKind.New(id, "Jane Doe") },
			table: UserKind.Table,
		},
		{
			name:  "account kind",
			build: func() Record { return AccountKind.New(id, "Jane Doe") },
			table: AccountKind.Table,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.build()
			if r.RecordID() != id {
				t.Errorf("RecordID() = %s, want %s", r.RecordID(), id)
			}
			if r.RecordName() != "Jane Doe" {
				t.Errorf("RecordName() = %q, want %q", r.RecordName(), "Jane Doe")
			}
			if tt.table == "" {
				t.Errorf("Kind.Table is empty")
			}
		})
	}
}

func TestRecord_String(t *testing.T) {
	u := User{Fullname: "Jane Doe"}
	if got := u.String(); got != "Full name: Jane Doe" {
		t.Errorf("User.String() = %q, want %q", got, "Full name: Jane Doe")
	}
}
