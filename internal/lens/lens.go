// Package lens derives lens identifiers from per-lens measurement file names.
package lens

import (
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/lensdata-cli/internal/table"
	"github.com/KaramelBytes/lensdata-cli/internal/utils"
)

// Column is the single column of the lens list CSV.
const Column = "LensName"

// NameFromFile strips the extension and the dataset token from file and trims
// surrounding underscores, spaces and dashes.
func NameFromFile(file, dataset string) string {
	base := filepath.Base(file)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if dataset != "" {
		stem = strings.ReplaceAll(stem, dataset, "")
	}
	return strings.Trim(stem, "_ -")
}

// Names returns the lens name of every .csv file in dir, in file name order.
func Names(dir, dataset string) ([]string, error) {
	files, err := utils.ListFiles(dir, func(name string) bool { return utils.HasExt(name, ".csv") })
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, NameFromFile(f, dataset))
	}
	return out, nil
}

// ListName is the lens list file written for dataset.
func ListName(dataset string) string { return "Lenses_" + dataset + ".csv" }

// WriteList writes names as a one-column CSV.
func WriteList(path string, names []string) error {
	recs := make([][]string, len(names))
	for i, n := range names {
		recs[i] = []string{n}
	}
	return table.New(path, []string{Column}, recs).WriteFile(path)
}
