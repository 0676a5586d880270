// Package dataset enumerates the measurement datasets a lens folder tree holds.
package dataset

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/lensdata-cli/internal/errs"
)

// Dataset selects one family of measurement files.
type Dataset int

const (
	FieldCurvature Dataset = iota
	Longitudinal
	RMSvField
	Vignetting
)

var names = [...]string{"FieldCurvature", "Longitudinal", "RMSvField", "Vignetting"}

// All lists every dataset in selector order.
func All() []Dataset { return []Dataset{FieldCurvature, Longitudinal, RMSvField, Vignetting} }

func (d Dataset) String() string {
	if d < 0 || int(d) >= len(names) {
		return "Dataset(" + strconv.Itoa(int(d)) + ")"
	}
	return names[d]
}

// Valid reports whether d is one of the known datasets.
func (d Dataset) Valid() bool { return d >= 0 && int(d) < len(names) }

// Parse accepts a dataset name (any case) or the legacy numeric selector 0..3.
func Parse(s string) (Dataset, error) {
	s = strings.TrimSpace(s)
	for _, d := range All() {
		if strings.EqualFold(s, d.String()) {
			return d, nil
		}
	}
	if i, err := strconv.Atoi(s); err == nil && Dataset(i).Valid() {
		return Dataset(i), nil
	}
	return 0, errs.NewConfig("dataset", "unknown dataset %q (want one of %s or 0..%d)", s, strings.Join(names[:], ", "), len(names)-1)
}

// Folder returns the input folder of d under inputRoot.
func (d Dataset) Folder(inputRoot string) string { return filepath.Join(inputRoot, d.String()) }

// CombinedPath returns the merged CSV written for d under outputRoot.
func (d Dataset) CombinedPath(outputRoot string) string {
	return filepath.Join(outputRoot, d.String()+".csv")
}

// Marker is the default file-name token that tags export files of d.
func (d Dataset) Marker() string { return "_" + d.String() }
