package files

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func relatives(ds []Descriptor) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Relative
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDiscoverDirectoryMasksAndRecursion(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.png"))
	touch(t, filepath.Join(root, "B.JPG"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "a.png.converted"))
	touch(t, filepath.Join(root, "sub", "c.jpeg"))

	masks := []string{"*.png", "*.jpg", "*.jpeg"}

	flat, err := Discover([]string{root}, Options{Masks: masks})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if got, want := relatives(flat), []string{"B.JPG", "a.png"}; !equal(got, want) {
		t.Fatalf("flat discovery = %v, want %v", got, want)
	}
	for _, d := range flat {
		if !d.OverwritesTarget() {
			t.Fatalf("expected in-place target without output dir: %+v", d)
		}
	}

	deep, err := Discover([]string{root}, Options{Masks: masks, Recursive: true})
	if err != nil {
		t.Fatalf("Discover recursive: %v", err)
	}
	if got, want := relatives(deep), []string{"B.JPG", "a.png", "sub/c.jpeg"}; !equal(got, want) {
		t.Fatalf("recursive discovery = %v, want %v", got, want)
	}
}

func TestDiscoverKeepsStructureUnderOutputDir(t *testing.T) {
	root := t.TempDir()
	out := t.TempDir()
	touch(t, filepath.Join(root, "sub", "deep", "x.png"))
	single := filepath.Join(t.TempDir(), "single.png")
	touch(t, single)

	ds, err := Discover([]string{root, single}, Options{OutputDir: out, Recursive: true, Masks: []string{"*.png"}})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(ds) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(ds))
	}
	if want := filepath.Join(out, "sub", "deep", "x.png"); ds[0].Target != want {
		t.Fatalf("target = %q, want %q", ds[0].Target, want)
	}
	if ds[0].String() != "sub/deep/x.png" {
		t.Fatalf("display name = %q", ds[0].String())
	}
	if want := filepath.Join(out, "single.png"); ds[1].Target != want || ds[1].OverwritesTarget() {
		t.Fatalf("unexpected single descriptor %+v", ds[1])
	}
}

func TestDiscoverErrors(t *testing.T) {
	empty := t.TempDir()
	if _, err := Discover([]string{empty}, Options{Masks: []string{"*.png"}}); !errors.Is(err, ErrNoInputs) {
		t.Fatalf("expected ErrNoInputs, got %v", err)
	}
	if _, err := Discover([]string{filepath.Join(empty, "missing.png")}, Options{}); err == nil {
		t.Fatal("expected error for missing input")
	}

	a := filepath.Join(t.TempDir(), "same.png")
	b := filepath.Join(t.TempDir(), "same.png")
	touch(t, a)
	touch(t, b)
	if _, err := Discover([]string{a, b}, Options{OutputDir: t.TempDir()}); err == nil {
		t.Fatal("expected clash error when two inputs share an output path")
	}
}

func TestDiscoverDeduplicatesSources(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.png")
	touch(t, path)
	ds, err := Discover([]string{path, root}, Options{Masks: []string{"*.png"}})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(ds) != 1 {
		t.Fatalf("expected duplicate source to collapse, got %v", relatives(ds))
	}
}
