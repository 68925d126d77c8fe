package alphamap

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"deepart/internal/fileutil"
)

type point struct {
	x, y int
}

// Map is a sparse record of sub-opaque pixels keyed by coordinate.
type Map struct {
	width   int
	height  int
	entries map[point]uint8
}

// New returns an empty map for an image of the given dimensions.
func New(width, height int) *Map {
	return &Map{width: width, height: height, entries: make(map[point]uint8)}
}

// Width of the source image.
func (m *Map) Width() int { return m.width }

// Height of the source image.
func (m *Map) Height() int { return m.height }

// Len returns the number of stored pixels.
func (m *Map) Len() int { return len(m.entries) }

// HasOpacity reports whether the source had any pixel with alpha below 255.
func (m *Map) HasOpacity() bool {
	return m != nil && len(m.entries) > 0
}

func (m *Map) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.width && y < m.height
}

// Set records alpha for (x, y). Storing 255 removes the entry.
func (m *Map) Set(x, y int, alpha uint8) error {
	if !m.inBounds(x, y) {
		return fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfRange, x, y, m.width, m.height)
	}
	if alpha == 0xff {
		delete(m.entries, point{x, y})
		return nil
	}
	m.entries[point{x, y}] = alpha
	return nil
}

// Get returns the stored alpha for (x, y). The second result is false for
// opaque or out-of-range pixels.
func (m *Map) Get(x, y int) (uint8, bool) {
	alpha, ok := m.entries[point{x, y}]
	return alpha, ok
}

// Each calls fn for every stored pixel in unspecified order.
func (m *Map) Each(fn func(x, y int, alpha uint8)) {
	for p, alpha := range m.entries {
		fn(p.x, p.y, alpha)
	}
}

// Extract decodes data and records every pixel with alpha below 255.
func Extract(data []byte) (*Map, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	bounds := img.Bounds()
	m := New(bounds.Dx(), bounds.Dy())

	// Opaque source formats can never contribute entries.
	if opaque, ok := img.(interface{ Opaque() bool }); ok && opaque.Opaque() {
		return m, nil
	}
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			if c.A == 0xff {
				continue
			}
			m.entries[point{x, y}] = c.A
		}
	}
	return m, nil
}

// ExtractFile reads path and extracts its alpha map.
func ExtractFile(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return Extract(data)
}

// Apply restores the alpha values of m into the image in data, keeping the
// converted colour of every pixel, and returns the result encoded as PNG.
func Apply(m *Map, data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ApplyError{Err: err}
	}
	bounds := img.Bounds()
	if bounds.Dx() != m.width || bounds.Dy() != m.height {
		return nil, &ApplyError{Err: fmt.Errorf("converted image is %dx%d, source was %dx%d",
			bounds.Dx(), bounds.Dy(), m.width, m.height)}
	}

	// Drawing into NRGBA un-premultiplies RGBA sources, so RGB survives the
	// alpha rewrite below.
	out := image.NewNRGBA(image.Rect(0, 0, m.width, m.height))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)

	for p, alpha := range m.entries {
		out.Pix[out.PixOffset(p.x, p.y)+3] = alpha
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, &ApplyError{Err: err}
	}
	return buf.Bytes(), nil
}

// ApplyFile rewrites the image at path with m applied. The file is replaced
// only after the new image is fully encoded, and not at all if ctx is done.
func ApplyFile(ctx context.Context, m *Map, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ApplyError{Err: err}
	}
	result, err := Apply(m, data)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := fileutil.WriteBytesAtomic(path, result, mode); err != nil {
		return &ApplyError{Err: err}
	}
	return nil
}
