// Package storage allocates and tracks the scratch raster volumes a
// pipeline run creates between filter stages, such as the output volume of
// each stage in cmd/volumecore-pipeline. It is grounded in
// original_source's use of a per-run temp_dir plus uuid.uuid4()-named
// scratch files (see bq3d/image_filters/filters/diffusion_correction's
// pad step and background_subtraction.py's shifted-background file),
// adapted here from the teacher's own uuid.NewV4() temp-naming pattern in
// storage/badger/badger.go.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/twinj/uuid"

	"github.com/gandhilab/volumecore/raster"
)

// Scratch owns a directory of intermediate volumes for one pipeline run.
// Close unmaps and removes them all.
type Scratch struct {
	dir string

	mu      sync.Mutex
	volumes []*raster.Volume
}

// NewScratch creates a fresh scratch directory under base (the system
// temp directory if base is empty).
func NewScratch(base string) (*Scratch, error) {
	dir, err := os.MkdirTemp(base, "volumecore-")
	if err != nil {
		return nil, fmt.Errorf("storage: create scratch dir: %w", err)
	}
	return &Scratch{dir: dir}, nil
}

// Dir returns the scratch directory's path.
func (s *Scratch) Dir() string {
	return s.dir
}

// Alloc opens a new, uniquely named raster volume of the given shape and
// element type inside the scratch directory, tracked for cleanup on
// Close.
func (s *Scratch) Alloc(shape [3]int64, et raster.ElemType) (*raster.Volume, error) {
	name := fmt.Sprintf("%x.raw", uuid.NewV4().Bytes())
	path := filepath.Join(s.dir, name)
	desc := raster.Descriptor{Filename: path, Shape: shape, ElemType: et}

	v, err := raster.Open(desc, raster.Create)
	if err != nil {
		return nil, fmt.Errorf("storage: alloc %s: %w", path, err)
	}

	s.mu.Lock()
	s.volumes = append(s.volumes, v)
	s.mu.Unlock()
	return v, nil
}

// Close unmaps every volume this Scratch has allocated, then removes the
// scratch directory and its contents. Unmapping errors are collected but
// do not stop the directory removal, since a stray mapping must not leak
// a scratch directory that Close was asked to clean up.
func (s *Scratch) Close() error {
	s.mu.Lock()
	volumes := s.volumes
	s.volumes = nil
	s.mu.Unlock()

	var closeErr error
	for _, v := range volumes {
		if err := v.Close(); err != nil && closeErr == nil {
			closeErr = fmt.Errorf("storage: close scratch volume: %w", err)
		}
	}
	if err := os.RemoveAll(s.dir); err != nil {
		if closeErr == nil {
			closeErr = err
		}
		return closeErr
	}
	return closeErr
}
