package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
)

// ErrNoInputs is returned when discovery finds nothing to convert.
var ErrNoInputs = errors.New("no files found to convert")

// Options controls input discovery.
type Options struct {
	OutputDir string
	// Masks are glob patterns matched against file names in directories,
	// ignoring case. Files named directly are never filtered.
	Masks     []string
	Recursive bool
}

// Discover expands inputs into descriptors. Directories contribute the files
// matching Masks, descending into subdirectories when Recursive is set.
func Discover(inputs []string, opts Options) ([]Descriptor, error) {
	fold := cases.Fold()
	masks := lo.Map(opts.Masks, func(m string, _ int) string { return fold.String(m) })

	var result []Descriptor
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("read input path %s: %w", input, err)
		}
		if !info.IsDir() {
			d, err := NewDescriptor(input, opts.OutputDir)
			if err != nil {
				return nil, err
			}
			result = append(result, d)
			continue
		}
		found, err := scanDir(input, input, opts, masks)
		if err != nil {
			return nil, fmt.Errorf("read input path %s: %w", input, err)
		}
		result = append(result, found...)
	}

	result = lo.UniqBy(result, func(d Descriptor) string { return d.Source })
	if err := checkTargets(result); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, ErrNoInputs
	}
	return result, nil
}

func scanDir(dir, root string, opts Options, masks []string) ([]Descriptor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var (
		result  []Descriptor
		subdirs []string
	)
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			subdirs = append(subdirs, path)
			continue
		}
		if !entry.Type().IsRegular() || !matchesAny(entry.Name(), masks) {
			continue
		}
		d, err := NewDescriptorIn(path, root, opts.OutputDir)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if !opts.Recursive {
		return result, nil
	}
	for _, sub := range subdirs {
		found, err := scanDir(sub, root, opts, masks)
		if err != nil {
			return nil, err
		}
		result = append(result, found...)
	}
	return result, nil
}

func matchesAny(name string, masks []string) bool {
	if len(masks) == 0 {
		return true
	}
	folded := cases.Fold().String(name)
	return lo.SomeBy(masks, func(mask string) bool {
		ok, err := filepath.Match(mask, folded)
		return err == nil && ok
	})
}

// checkTargets rejects two sources writing to the same output file.
func checkTargets(descriptors []Descriptor) error {
	byTarget := lo.GroupBy(descriptors, func(d Descriptor) string { return d.Target })
	var clashes []string
	for target, group := range byTarget {
		if len(group) > 1 {
			sources := lo.Map(group, func(d Descriptor, _ int) string { return d.Source })
			clashes = append(clashes, fmt.Sprintf("%s <- %s", target, strings.Join(sources, ", ")))
		}
	}
	if len(clashes) == 0 {
		return nil
	}
	sort.Strings(clashes)
	return fmt.Errorf("several inputs map to the same output: %s", strings.Join(clashes, "; "))
}
