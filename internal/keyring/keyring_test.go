package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestConnectionStringRoundTrip(t *testing.T) {
	gokeyring.MockInit()

	conn := "postgres://planner@localhost:5432/hourplan?sslmode=disable"
	if err := SetConnectionString("  " + conn + "\n"); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}
	got, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if got != conn {
		t.Errorf("GetConnectionString() = %q, want %q", got, conn)
	}

	if err := DeleteConnectionString(); err != nil {
		t.Fatalf("DeleteConnectionString() failed: %v", err)
	}
	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete, error = %v, want %v", err, ErrNotFound)
	}
}

func TestSetConnectionString_Rejects(t *testing.T) {
	gokeyring.MockInit()

	tests := []struct {
		name string
		conn string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"sqlite path", "/tmp/hourplan.db"},
		{"mysql url", "mysql://root@localhost/hourplan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := SetConnectionString(tt.conn); err == nil {
				t.Errorf("SetConnectionString(%q) should fail", tt.conn)
			}
		})
	}
}

func TestDeleteConnectionString_NotFound(t *testing.T) {
	gokeyring.MockInit()
	_ = DeleteConnectionString()

	if err := DeleteConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteConnectionString() error = %v, want %v", err, ErrNotFound)
	}
}

func TestEntry_Isolated(t *testing.T) {
	gokeyring.MockInit()

	other := Entry{Service: "hourplan", User: "someone-else"}
	if err := other.Set("secret"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	_ = DeleteConnectionString()
	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("default entry should be empty, got %v", err)
	}
	if got, _ := other.Get(); got != "secret" {
		t.Errorf("other entry = %q", got)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()
	if !IsAvailable() {
		t.Error("IsAvailable() = false, want true with the mock keyring")
	}
}
