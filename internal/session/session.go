// Package session tracks the drive context shared by the file tools: which
// drive operations run against when the caller does not name one.
package session

import (
	"sync"

	"github.com/amartinez/sharepoint-mcp-go/internal/graph"
)

// Session holds the active drive selection. Safe for concurrent tool calls.
type Session struct {
	mu            sync.RWMutex
	activeDriveID string
}

// New returns an empty session with no drive selected.
func New() *Session {
	return &Session{}
}

// SetActiveDrive records the drive used by subsequent file operations.
// Callers validate the drive against Graph before selecting it.
func (s *Session) SetActiveDrive(driveID string) {
	s.mu.Lock()
	s.activeDriveID = driveID
	s.mu.Unlock()
}

// ActiveDrive returns the selected drive ID, or "" when none is set.
func (s *Session) ActiveDrive() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeDriveID
}

// Resolve picks the drive for an operation: an explicitly passed drive ID
// wins, then the active drive. Neither set is an error the agent can act
// on (select a drive or pass drive_id).
func (s *Session) Resolve(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if active := s.ActiveDrive(); active != "" {
		return active, nil
	}
	return "", graph.ErrNoDrive
}
