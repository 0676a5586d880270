package prescription

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrNoSurface is reported for every property of a surface the exporter
// could not read.
var ErrNoSurface = errors.New("surface not available")

// Snapshot is the JSON document an exporter running next to the application
// writes: one property map per surface, in surface order. A null entry marks
// a surface that could not be read.
type Snapshot struct {
	System   string           `json:"system,omitempty"`
	Surfaces []map[string]any `json:"surfaces"`
}

// SnapshotBridge serves a Snapshot through the Bridge interface.
type SnapshotBridge struct {
	snap Snapshot
}

// NewSnapshotBridge wraps an in-memory snapshot.
func NewSnapshotBridge(s Snapshot) *SnapshotBridge { return &SnapshotBridge{snap: s} }

// LoadSnapshot reads a snapshot file.
func LoadSnapshot(path string) (*SnapshotBridge, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return NewSnapshotBridge(s), nil
}

func (s *SnapshotBridge) SurfaceCount() (int, error) { return len(s.snap.Surfaces), nil }

func (s *SnapshotBridge) Property(surface int, name string) Result {
	if surface < 1 || surface > len(s.snap.Surfaces) {
		return Fail(fmt.Errorf("surface %d out of range", surface))
	}
	props := s.snap.Surfaces[surface-1]
	if props == nil {
		return Fail(ErrNoSurface)
	}
	v, ok := props[name]
	if !ok {
		return Fail(fmt.Errorf("no property %q", name))
	}
	return Ok(v)
}
