// Package prescription dumps per-surface lens prescription data read through
// a bridge to the optical design application.
package prescription

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/KaramelBytes/lensdata-cli/internal/logging"
	"github.com/KaramelBytes/lensdata-cli/internal/table"
)

// Columns is the fixed column layout of a prescription dump.
var Columns = []string{
	"Surface", "Comment", "Type", "Radius", "Thickness", "Material",
	"SemiDiameter", "Conic", "A4", "A6", "A8",
}

var textColumns = map[string]bool{"Comment": true, "Type": true, "Material": true}

// ErrNoValue is reported for a property that exists but holds nothing.
var ErrNoValue = errors.New("property has no value")

// Result is the outcome of reading one surface property.
type Result struct {
	Value any
	Err   error
}

// Ok wraps a successfully read value.
func Ok(v any) Result { return Result{Value: v} }

// Fail wraps a failed read.
func Fail(err error) Result { return Result{Err: err} }

// Float converts the value to a number.
func (r Result) Float() (float64, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	switch v := r.Value.(type) {
	case nil:
		return 0, ErrNoValue
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unexpected %T value", r.Value)
	}
}

// Text converts the value to a string.
func (r Result) Text() (string, error) {
	if r.Err != nil {
		return "", r.Err
	}
	switch v := r.Value.(type) {
	case nil:
		return "", ErrNoValue
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// Bridge is the application side of a prescription read. Surfaces are
// numbered from 1.
type Bridge interface {
	SurfaceCount() (int, error)
	Property(surface int, name string) Result
}

// Dump is the prescription table plus how often each property failed.
type Dump struct {
	Table    *table.Table
	Failures map[string]int
}

// Read walks surfaces 1..N and reads every column. A failed text property
// becomes "", a failed numeric property becomes NaN and is written blank.
func Read(source string, b Bridge) (*Dump, error) {
	n, err := b.SurfaceCount()
	if err != nil {
		return nil, fmt.Errorf("surface count: %w", err)
	}
	log := logging.L()
	d := &Dump{Failures: make(map[string]int)}
	records := make([][]string, 0, n)
	for i := 1; i <= n; i++ {
		rec := make([]string, len(Columns))
		rec[0] = strconv.Itoa(i)
		for j, col := range Columns[1:] {
			res := b.Property(i, col)
			var cell string
			if textColumns[col] {
				cell, err = res.Text()
			} else {
				var f float64
				f, err = res.Float()
				if err != nil {
					f = math.NaN()
				}
				cell = formatNumber(f)
			}
			if err != nil {
				d.Failures[col]++
				log.Debug("property read failed", zap.Int("surface", i), zap.String("property", col), zap.Error(err))
			}
			rec[j+1] = cell
		}
		records = append(records, rec)
	}
	for col, k := range d.Failures {
		log.Debug("property failures", zap.String("property", col), zap.Int("count", k))
	}
	d.Table = table.New(source, Columns, records)
	return d, nil
}

func formatNumber(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
