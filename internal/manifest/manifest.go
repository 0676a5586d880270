// Package manifest records what one lensdata run read, skipped and wrote.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/lensdata-cli/internal/errs"
	"github.com/KaramelBytes/lensdata-cli/internal/utils"
)

// Suffix is appended to the primary output path to name its manifest.
const Suffix = ".manifest.json"

// Manifest is persisted next to a command's primary output.
type Manifest struct {
	RunID      string    `json:"run_id"`
	Command    string    `json:"command"`
	Dataset    string    `json:"dataset,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	Inputs     []Input   `json:"inputs"`
	Skipped    []Skip    `json:"skipped"`
	Outputs    []string  `json:"outputs"`

	// Not serialized: where Save writes.
	path string
}

// Input is one source file that contributed rows.
type Input struct {
	ID   string `json:"id"`
	Path string `json:"path"`
	Rows int    `json:"rows"`
}

// Skip is one source file that was passed over.
type Skip struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Error  string `json:"error,omitempty"`
}

// New starts a manifest for command whose primary output is output.
func New(command, dataset, output string) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		Command:   command,
		Dataset:   dataset,
		StartedAt: time.Now(),
		Inputs:    []Input{},
		Skipped:   []Skip{},
		Outputs:   []string{},
		path:      PathFor(output),
	}
}

// PathFor returns the manifest path that belongs to output.
func PathFor(output string) string { return output + Suffix }

// Load reads a manifest file.
func Load(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.path = path
	return &m, nil
}

// Path returns where Save writes.
func (m *Manifest) Path() string { return m.path }

// AddInput records a contributing file and returns its generated ID.
func (m *Manifest) AddInput(path string, rows int) string {
	id := uuid.NewString()
	m.Inputs = append(m.Inputs, Input{ID: id, Path: path, Rows: rows})
	return id
}

// AddSkip records a skipped file.
func (m *Manifest) AddSkip(se *errs.SkipError) {
	s := Skip{Path: se.Path, Reason: se.Reason}
	if se.Err != nil {
		s.Error = se.Err.Error()
	}
	m.Skipped = append(m.Skipped, s)
}

// AddOutput records a written file.
func (m *Manifest) AddOutput(paths ...string) {
	m.Outputs = append(m.Outputs, paths...)
}

// Save stamps the finish time and writes the manifest atomically.
func (m *Manifest) Save() error {
	if m.path == "" {
		return errors.New("manifest path not set")
	}
	if err := utils.EnsureDir(filepath.Dir(m.path)); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	m.FinishedAt = time.Now()
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(m.path, data)
}
