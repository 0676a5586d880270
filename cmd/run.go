package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/lensdata-cli/internal/errs"
	"github.com/KaramelBytes/lensdata-cli/internal/manifest"
	"github.com/KaramelBytes/lensdata-cli/internal/table"
	"github.com/KaramelBytes/lensdata-cli/internal/utils"
)

// listInputs returns the files directly inside dir accepted by keep. A missing
// or unreadable directory is a configuration problem, not an I/O failure.
func listInputs(dir string, keep func(string) bool) ([]string, error) {
	files, err := utils.ListFiles(dir, keep)
	if err != nil {
		return nil, errs.NewConfig("input_root", "cannot read input directory %s: %v", dir, err)
	}
	return files, nil
}

// walkInputs is listInputs for a whole tree.
func walkInputs(root string, keep func(string) bool) ([]string, error) {
	files, err := utils.WalkFiles(root, keep)
	if err != nil {
		return nil, errs.NewConfig("input_root", "cannot read input directory %s: %v", root, err)
	}
	return files, nil
}

func isCSV(name string) bool { return utils.HasExt(name, ".csv") }

// record copies per-file outcomes into m and reports skips on stdout.
func record(m *manifest.Manifest, sources []table.SourceCount, skipped []*errs.SkipError) {
	for _, s := range sources {
		m.AddInput(s.Source, s.Rows)
	}
	for _, se := range skipped {
		m.AddSkip(se)
		fmt.Printf("⚠ Skipped %s: %s\n", filepath.Base(se.Path), se.Reason)
	}
}

// finish saves the manifest after the outputs are in place.
func finish(m *manifest.Manifest) error {
	if err := m.Save(); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	return nil
}

// aggregateCommands write files that combine other inputs and must not be
// read back as inputs.
var aggregateCommands = map[string]bool{"merge": true, "lenses": true}

// derivedFrom reports the command that produced path when its manifest marks
// it as an aggregate.
func derivedFrom(path string) (string, bool) {
	m, err := manifest.Load(manifest.PathFor(path))
	if err != nil {
		return "", false
	}
	for _, out := range m.Outputs {
		if filepath.Base(out) == filepath.Base(path) && aggregateCommands[m.Command] {
			return m.Command, true
		}
	}
	return "", false
}
