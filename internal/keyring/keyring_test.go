package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetConnectionString(t *testing.T) {
	gokeyring.MockInit()

	tests := []struct {
		name    string
		profile string
		connStr string
	}{
		{name: "default profile", profile: "", connStr: "postgres://ad@localhost:5432/hotset?sslmode=disable"},
		{name: "named profile", profile: "Feature-Unit", connStr: "host=db.local user=ad dbname=feature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := SetConnectionString(tt.profile, tt.connStr); err != nil {
				t.Fatalf("SetConnectionString() error = %v", err)
			}
			got, err := GetConnectionString(tt.profile)
			if err != nil {
				t.Fatalf("GetConnectionString() error = %v", err)
			}
			if got != tt.connStr {
				t.Errorf("GetConnectionString() = %q, want %q", got, tt.connStr)
			}
		})
	}
}

func TestProfilesAreSeparate(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("", "postgres://a@localhost/one"); err != nil {
		t.Fatal(err)
	}
	if _, err := GetConnectionString("second-unit"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetConnectionString(second-unit) error = %v, want %v", err, ErrNotFound)
	}
	// profile names are case-insensitive
	if err := SetConnectionString("Second-Unit", "postgres://b@localhost/two"); err != nil {
		t.Fatal(err)
	}
	got, err := GetConnectionString("second-unit")
	if err != nil || got != "postgres://b@localhost/two" {
		t.Errorf("GetConnectionString(second-unit) = %q, %v", got, err)
	}
}

func TestSetConnectionStringEmpty(t *testing.T) {
	gokeyring.MockInit()
	if err := SetConnectionString("", "   "); err == nil {
		t.Error("SetConnectionString with a blank value should fail")
	}
}

func TestDeleteConnectionString(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("", "postgres://ad@localhost/hotset"); err != nil {
		t.Fatal(err)
	}
	if err := DeleteConnectionString(""); err != nil {
		t.Fatalf("DeleteConnectionString() error = %v", err)
	}
	if _, err := GetConnectionString(""); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetConnectionString() after delete error = %v, want %v", err, ErrNotFound)
	}
	if err := DeleteConnectionString(""); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteConnectionString() error = %v, want %v", err, ErrNotFound)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()
	if !IsAvailable() {
		t.Error("IsAvailable() = false with the mock keyring")
	}
}
