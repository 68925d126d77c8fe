package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"deepart/internal/deepart"
	"deepart/internal/files"
)

var errNoAnswer = errors.New("input closed before an answer was given")

func printFileList(out io.Writer, title string, batch []files.Descriptor) {
	fmt.Fprintln(out, title)
	for _, file := range lo.Slice(batch, 0, maxListedFiles) {
		fmt.Fprintf(out, "  %s\n", file)
	}
	if len(batch) > maxListedFiles {
		fmt.Fprintf(out, "  and %d other(s)\n", len(batch)-maxListedFiles)
	}
}

// prompter reads answers line by line. One scanner serves every question so
// piped input is not lost to read-ahead.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// readLine returns the next line, or errNoAnswer once input is exhausted.
func (p *prompter) readLine() (string, error) {
	if p.in.Scan() {
		return strings.TrimSpace(p.in.Text()), nil
	}
	if err := p.in.Err(); err != nil {
		return "", err
	}
	fmt.Fprintln(p.out)
	return "", errNoAnswer
}

// confirmOverwrite asks before results replace their sources. It returns true
// without asking when no file overwrites its source, and false when input
// ends without an answer.
func (p *prompter) confirmOverwrite(batch []files.Descriptor) (bool, error) {
	overwritten := lo.Filter(batch, func(d files.Descriptor, _ int) bool { return d.OverwritesTarget() })
	if len(overwritten) == 0 {
		return true, nil
	}

	printFileList(p.out, "These files will be OVERWRITTEN:", overwritten)
	for {
		fmt.Fprint(p.out, "Continue? Y/N ")
		answer, err := p.readLine()
		if errors.Is(err, errNoAnswer) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

// selectEffect prints the effects grouped by media type and reads a 1-based
// choice until a valid number is entered.
func (p *prompter) selectEffect(effects []deepart.Effect) (deepart.Effect, error) {
	out := p.out
	groups := deepart.GroupByMediaType(effects)
	numbered := deepart.Numbered(groups)
	n := 0
	for _, group := range groups {
		if group.MediaType == "" {
			fmt.Fprintln(out, "Other available effects:")
		} else {
			fmt.Fprintf(out, "Available %s effects:\n", group.MediaType)
		}
		for _, effect := range group.Effects {
			n++
			fmt.Fprintf(out, "  %d. %s\n", n, effect.Name)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "Please select an effect (1 - %d): ", len(numbered))
	for {
		answer, err := p.readLine()
		if err != nil {
			return deepart.Effect{}, err
		}
		choice, err := strconv.Atoi(answer)
		if err != nil || choice < 1 || choice > len(numbered) {
			fmt.Fprintf(out, "Invalid number. Please select an effect (1 - %d): ", len(numbered))
			continue
		}
		selected := numbered[choice-1]
		fmt.Fprintf(out, "Selected effect: %s\n", selected.Name)
		fmt.Fprintln(out)
		return selected, nil
	}
}
