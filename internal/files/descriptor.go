// Package files turns command line inputs into the set of files to convert
// and maps each one onto its output location.
package files

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Descriptor identifies one unit of work. It is immutable once built.
type Descriptor struct {
	// Source is the absolute path of the input image.
	Source string
	// Target is the absolute path the converted image is written to.
	Target string
	// Relative is Target relative to the output root, used for display.
	Relative string
}

// NewDescriptor describes a file named directly on the command line. The
// target sits in outputDir, or replaces the source when outputDir is empty.
func NewDescriptor(source, outputDir string) (Descriptor, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return Descriptor{}, fmt.Errorf("resolve %q: %w", source, err)
	}
	name := filepath.Base(abs)
	target := abs
	if outputDir != "" {
		if target, err = filepath.Abs(filepath.Join(outputDir, name)); err != nil {
			return Descriptor{}, fmt.Errorf("resolve output for %q: %w", source, err)
		}
	}
	return Descriptor{Source: abs, Target: target, Relative: name}, nil
}

// NewDescriptorIn describes a file found under root. The path below root is
// kept below outputDir, or below root itself when outputDir is empty.
func NewDescriptorIn(source, root, outputDir string) (Descriptor, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return Descriptor{}, fmt.Errorf("resolve %q: %w", source, err)
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return Descriptor{}, fmt.Errorf("resolve %q: %w", root, err)
	}
	rel, err := filepath.Rel(rootAbs, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return Descriptor{}, fmt.Errorf("%s is not inside %s", abs, rootAbs)
	}
	if outputDir == "" {
		outputDir = rootAbs
	}
	target, err := filepath.Abs(filepath.Join(outputDir, rel))
	if err != nil {
		return Descriptor{}, fmt.Errorf("resolve output for %q: %w", source, err)
	}
	return Descriptor{Source: abs, Target: target, Relative: filepath.ToSlash(rel)}, nil
}

// Name is the base name of the source file.
func (d Descriptor) Name() string { return filepath.Base(d.Source) }

// OverwritesTarget reports whether conversion replaces the source in place.
func (d Descriptor) OverwritesTarget() bool { return d.Source == d.Target }

func (d Descriptor) String() string { return d.Relative }
