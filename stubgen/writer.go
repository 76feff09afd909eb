package stubgen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"

	"github.com/Nioron07/Easy-Acumatica/schema"
)

// Layout selects how rendered units land on disk.
type Layout uint8

const (
	// LayoutPerEntity writes one file per entity into the target directory.
	LayoutPerEntity Layout = iota
	// LayoutSingleFile writes every declaration into one models.go file.
	LayoutSingleFile
)

// FileWriter persists rendered stubs under a target directory.
type FileWriter struct {
	dir     string
	layout  Layout
	workers int
}

// NewFileWriter creates a writer targeting dir with the per-entity layout.
func NewFileWriter(dir string, opts ...WriterOption) *FileWriter {
	w := &FileWriter{dir: dir, layout: LayoutPerEntity, workers: 4}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriterOption configures a FileWriter.
type WriterOption func(*FileWriter)

// WithLayout sets the on-disk layout.
func WithLayout(l Layout) WriterOption {
	return func(w *FileWriter) { w.layout = l }
}

// WithWorkers bounds the number of concurrent file writes.
func WithWorkers(n int) WriterOption {
	return func(w *FileWriter) {
		if n > 0 {
			w.workers = n
		}
	}
}

// Write renders the snapshot through the emitter and persists the result.
// Rendering stays sequential so unit order follows the emitter's policy;
// only the disk writes fan out.
func (w *FileWriter) Write(ctx context.Context, m *schema.Model, e *Emitter) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return errors.Wrapf(err, "stubgen: create %s", w.dir)
	}
	if w.layout == LayoutSingleFile {
		return w.writeSingle(m, e)
	}

	type unit struct {
		name string
		src  []byte
	}
	var units []unit
	err := e.Emit(m, SinkFunc(func(name string, src []byte) error {
		units = append(units, unit{name: name, src: src})
		return nil
	}))
	if err != nil {
		return err
	}

	grp, _ := errgroup.WithContext(ctx)
	grp.SetLimit(w.workers)
	for _, u := range units {
		u := u
		grp.Go(func() error {
			target := filepath.Join(w.dir, fileName(u.name))
			if err := os.WriteFile(target, u.src, 0o644); err != nil {
				return errors.Wrapf(err, "stubgen: write %s", target)
			}
			return nil
		})
	}
	return grp.Wait()
}

func (w *FileWriter) writeSingle(m *schema.Model, e *Emitter) error {
	var buf bytes.Buffer
	if err := e.EmitFile(m, &buf); err != nil {
		return err
	}
	target := filepath.Join(w.dir, "models.go")
	src, err := imports.Process(target, buf.Bytes(), nil)
	if err != nil {
		return errors.Wrapf(err, "stubgen: format %s", target)
	}
	if err := os.WriteFile(target, src, 0o644); err != nil {
		return errors.Wrapf(err, "stubgen: write %s", target)
	}
	return nil
}

func fileName(entity string) string {
	return strings.ToLower(entity) + ".go"
}
