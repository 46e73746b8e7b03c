package cli

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/causalgraph/pkg/domain"
	"github.com/aretw0/causalgraph/pkg/dot"
)

// Normalize converts a DOT description (file or stdin) to the single-line dialect.
func Normalize(streams IOStreams, path string) error {
	src, err := readSource(path, streams.In)
	if err != nil {
		return err
	}
	out, err := dot.Normalize(src)
	if err != nil {
		return err
	}
	return writeLine(streams.Out, out)
}

// Diff compares two DOT files and writes the structural changes as JSON.
func Diff(streams IOStreams, oldPath, newPath string) error {
	oldGraph, err := parseFile(oldPath)
	if err != nil {
		return err
	}
	newGraph, err := parseFile(newPath)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(streams.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(domain.Diff(oldGraph, newGraph))
}

func parseFile(path string) (*domain.Graph, error) {
	src, err := readSource(path, nil)
	if err != nil {
		return nil, err
	}
	g, err := dot.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
