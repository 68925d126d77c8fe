package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"deepart/internal/deepart"
	"deepart/internal/files"
)

func descriptors(n int, inPlace bool) []files.Descriptor {
	batch := make([]files.Descriptor, 0, n)
	for i := range n {
		name := fmt.Sprintf("img%02d.png", i)
		target := "/out/" + name
		if inPlace {
			target = "/in/" + name
		}
		batch = append(batch, files.Descriptor{Source: "/in/" + name, Target: target, Relative: name})
	}
	return batch
}

func TestPrintFileListTruncates(t *testing.T) {
	var out bytes.Buffer
	printFileList(&out, "These files will be converted:", descriptors(12, false))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 12 {
		t.Fatalf("expected title, 10 files and a tail line, got %d lines: %q", len(lines), out.String())
	}
	if lines[len(lines)-1] != "  and 2 other(s)" {
		t.Fatalf("unexpected tail line %q", lines[len(lines)-1])
	}
}

func TestConfirmOverwriteSkipsWhenNothingIsOverwritten(t *testing.T) {
	var out bytes.Buffer
	ok, err := newPrompter(strings.NewReader(""), &out).confirmOverwrite(descriptors(2, false))
	if err != nil || !ok {
		t.Fatalf("confirmOverwrite = %v, %v; want true, nil", ok, err)
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestConfirmOverwriteAnswers(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "no\n", want: false},
		{input: "what\nY\n", want: true},
		{input: "", want: false},
	}
	for _, tc := range cases {
		var out bytes.Buffer
		ok, err := newPrompter(strings.NewReader(tc.input), &out).confirmOverwrite(descriptors(1, true))
		if err != nil {
			t.Fatalf("input %q: %v", tc.input, err)
		}
		if ok != tc.want {
			t.Fatalf("input %q: got %v want %v", tc.input, ok, tc.want)
		}
	}
}

func TestSelectEffectGroupsByMediaType(t *testing.T) {
	effects := []deepart.Effect{
		{Name: "Clip", MediaType: "VIDEO"},
		{Name: "Mosaic", MediaType: "IMAGE"},
		{Name: "Plain"},
	}
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("3\n"), &out)

	selected, err := p.selectEffect(effects)
	if err != nil {
		t.Fatalf("selectEffect: %v", err)
	}
	if selected.Name != "Clip" {
		t.Fatalf("selected %q, want Clip", selected.Name)
	}
	want := "Other available effects:\n  1. Plain\n\n" +
		"Available IMAGE effects:\n  2. Mosaic\n\n" +
		"Available VIDEO effects:\n  3. Clip\n\n"
	if !strings.HasPrefix(out.String(), want) {
		t.Fatalf("unexpected listing:\n%s", out.String())
	}
}

func TestSelectEffectInputClosed(t *testing.T) {
	var out bytes.Buffer
	_, err := newPrompter(strings.NewReader("0\n"), &out).selectEffect([]deepart.Effect{{Name: "Mosaic", MediaType: "IMAGE"}})
	if !errors.Is(err, errNoAnswer) {
		t.Fatalf("err = %v, want errNoAnswer", err)
	}
}
