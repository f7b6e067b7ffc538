package storage

import (
	"os"
	"testing"

	"github.com/gandhilab/volumecore/raster"
)

func TestScratchAllocAndClose(t *testing.T) {
	s, err := NewScratch(t.TempDir())
	if err != nil {
		t.Fatalf("NewScratch: %v", err)
	}

	v, err := s.Alloc([3]int64{2, 2, 2}, raster.U8)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	data := raster.As[uint8](v)
	if len(data) != 8 {
		t.Fatalf("len(data) = %d, want 8", len(data))
	}
	if err := v.Close(); err != nil {
		t.Fatalf("Close volume: %v", err)
	}

	dir := s.Dir()
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("scratch dir missing before Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close scratch: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("scratch dir still present after Close")
	}
}

func TestScratchAllocUniqueNames(t *testing.T) {
	s, err := NewScratch(t.TempDir())
	if err != nil {
		t.Fatalf("NewScratch: %v", err)
	}
	defer s.Close()

	a, err := s.Alloc([3]int64{1, 1, 1}, raster.U8)
	if err != nil {
		t.Fatalf("Alloc a: %v", err)
	}
	defer a.Close()
	b, err := s.Alloc([3]int64{1, 1, 1}, raster.U8)
	if err != nil {
		t.Fatalf("Alloc b: %v", err)
	}
	defer b.Close()

	if a.Descriptor().Filename == b.Descriptor().Filename {
		t.Fatal("expected distinct scratch filenames")
	}
}
