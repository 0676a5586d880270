package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/lensdata-cli/internal/errs"
	"github.com/KaramelBytes/lensdata-cli/internal/logging"
	"github.com/KaramelBytes/lensdata-cli/internal/table"
	"github.com/KaramelBytes/lensdata-cli/internal/utils"
)

// Parser turns the decoded text of one source file into a Table.
type Parser interface {
	CanParse(filename string) bool
	Parse(source string, text []byte) (*table.Table, error)
}

// ErrUnsupported indicates no registered parser accepts the file name.
var ErrUnsupported = errors.New("unsupported source format")

// Registry selects a parser by file name. The first match wins.
type Registry struct {
	parsers []Parser
}

// NewRegistry returns a registry holding ps in priority order.
func NewRegistry(ps ...Parser) *Registry {
	return &Registry{parsers: append([]Parser(nil), ps...)}
}

// Accepts reports whether some parser handles filename.
func (r *Registry) Accepts(filename string) bool {
	_, ok := r.lookup(filename)
	return ok
}

func (r *Registry) lookup(filename string) (Parser, bool) {
	for _, p := range r.parsers {
		if p.CanParse(filename) {
			return p, true
		}
	}
	return nil, false
}

// ParseFile decodes path (UTF-8, falling back to UTF-16) and parses it.
// Undecodable text and parser-level rejections come back as *errs.SkipError.
func (r *Registry) ParseFile(path string) (*table.Table, error) {
	p, ok := r.lookup(filepath.Base(path))
	if !ok {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
	}
	text, err := utils.ReadText(path)
	if err != nil {
		if errors.Is(err, utils.ErrDecode) {
			return nil, errs.NewSkip(path, "could not read", err)
		}
		return nil, err
	}
	return p.Parse(path, text)
}

// Outcome is the result of parsing one file: exactly one of Table or Skip is set.
type Outcome struct {
	Path  string
	Table *table.Table
	Skip  *errs.SkipError
}

// ParseFiles parses paths with at most workers files in flight. Outcomes are
// returned in the order of paths regardless of completion order. Skips are
// logged and recorded; any other error aborts the batch.
func (r *Registry) ParseFiles(ctx context.Context, paths []string, workers int) ([]Outcome, error) {
	if workers <= 0 {
		workers = 1
	}
	out := make([]Outcome, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tb, err := r.ParseFile(path)
			if err != nil {
				if se, ok := errs.AsSkip(err); ok {
					out[i] = Outcome{Path: path, Skip: se}
					return nil
				}
				return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
			}
			out[i] = Outcome{Path: path, Table: tb}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log := logging.L()
	for _, o := range out {
		if o.Skip != nil {
			log.Warn("skipping file", zap.String("file", o.Path), zap.String("reason", o.Skip.Reason), zap.Error(o.Skip.Err))
			continue
		}
		log.Debug("parsed file", zap.String("file", o.Path), zap.Int("rows", o.Table.Len()))
	}
	return out, nil
}
