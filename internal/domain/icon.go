package domain

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
)

const (
	ModeContain = "contain"
	ModeCover   = "cover"
)

// DefaultSizes is the icon size set exported when --sizes is not given.
var DefaultSizes = []int{16, 32, 48, 128}

// Request describes one full icon-generation run.
type Request struct {
	InputPath string
	OutputDir string
	Mode      string
	// Background fills the padding in contain mode. nil means transparent.
	Background *color.NRGBA
	Sizes      []int
	Round      bool
	Archive    bool
}

// OutputSpec is one requested icon: a pixel size plus the run's style flags.
type OutputSpec struct {
	Size  int
	Round bool
}

// OutputFile records one icon written to disk.
type OutputFile struct {
	Size  int
	Path  string
	Bytes int
}

// RunResult is the outcome of a successful run. Files are sorted by size
// ascending; ArchivePath is empty when archiving was disabled.
type RunResult struct {
	Files       []OutputFile
	ArchivePath string
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.InputPath) == "" {
		return errors.New("input path is required")
	}
	if strings.TrimSpace(r.OutputDir) == "" {
		return errors.New("output directory is required")
	}
	mode := strings.ToLower(strings.TrimSpace(r.Mode))
	if mode != ModeContain && mode != ModeCover {
		return fmt.Errorf("unsupported mode: %s", r.Mode)
	}
	if len(r.Sizes) == 0 {
		return errors.New("at least one output size is required")
	}
	for i, size := range r.Sizes {
		if size <= 0 {
			return fmt.Errorf("sizes[%d] must be a positive integer, got %d", i, size)
		}
	}
	return nil
}

// Specs expands the request's size list into one OutputSpec per unique size,
// preserving first-occurrence order.
func (r Request) Specs() []OutputSpec {
	seen := make(map[int]struct{}, len(r.Sizes))
	specs := make([]OutputSpec, 0, len(r.Sizes))
	for _, size := range r.Sizes {
		if _, ok := seen[size]; ok {
			continue
		}
		seen[size] = struct{}{}
		specs = append(specs, OutputSpec{Size: size, Round: r.Round})
	}
	return specs
}
