package session

import (
	"errors"
	"testing"

	"github.com/amartinez/sharepoint-mcp-go/internal/graph"
)

func TestActiveDriveDefaultsToEmpty(t *testing.T) {
	s := New()
	if got := s.ActiveDrive(); got != "" {
		t.Errorf("ActiveDrive() = %q, want empty", got)
	}
}

func TestSetActiveDrive(t *testing.T) {
	s := New()
	s.SetActiveDrive("drive-1")
	if got := s.ActiveDrive(); got != "drive-1" {
		t.Errorf("ActiveDrive() = %q, want drive-1", got)
	}

	s.SetActiveDrive("drive-2")
	if got := s.ActiveDrive(); got != "drive-2" {
		t.Errorf("ActiveDrive() = %q, want drive-2", got)
	}
}

func TestResolvePrecedence(t *testing.T) {
	s := New()
	s.SetActiveDrive("active-drive")

	// An explicit drive ID beats the active selection.
	got, err := s.Resolve("explicit-drive")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != "explicit-drive" {
		t.Errorf("Resolve() = %q, want explicit-drive", got)
	}

	got, err = s.Resolve("")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != "active-drive" {
		t.Errorf("Resolve() = %q, want active-drive", got)
	}
}

func TestResolveWithoutDrive(t *testing.T) {
	s := New()

	_, err := s.Resolve("")
	if !errors.Is(err, graph.ErrNoDrive) {
		t.Errorf("Resolve() error = %v, want graph.ErrNoDrive", err)
	}
}
