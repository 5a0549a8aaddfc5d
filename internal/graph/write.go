package graph

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Write serializes g in the given format.
func Write(w io.Writer, g *Graph, f Format) error {
	switch f {
	case FormatGML:
		return WriteGML(w, g)
	case FormatGraphML:
		return WriteGraphML(w, g)
	}
	return fmt.Errorf("unsupported graph format: %v", f)
}

// WriteFile serializes g to path, replacing any existing file. The graph is
// written to a temporary file in the same directory first, so a failed write
// leaves path untouched.
func WriteFile(path string, g *Graph, f Format) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating graph file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := Write(tmp, g, f); err != nil {
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		return fmt.Errorf("writing graph file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing graph file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing graph file: %w", err)
	}
	return nil
}
