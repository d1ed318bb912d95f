package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"vsdiag/internal/interchange"
)

var ErrUnsafePath = errors.New("file name escapes the output directory")

// WriteOutput writes the text of every file of u below dir, keeping the
// file names of the snapshot. When snapshot is not empty the unit is also
// encoded to dir/snapshot, in the format its extension selects.
func WriteOutput(dir string, u *Unit, snapshot string) error {
	for _, t := range u.Prog {
		name := filepath.FromSlash(t.Name())
		if !filepath.IsLocal(name) {
			return fmt.Errorf("driver: %q: %w", t.Name(), ErrUnsafePath)
		}
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("driver: %w", err)
		}
		if err := os.WriteFile(path, []byte(t.Render()), 0o644); err != nil {
			return fmt.Errorf("driver: %w", err)
		}
	}
	if snapshot == "" {
		return nil
	}
	if !filepath.IsLocal(snapshot) {
		return fmt.Errorf("driver: %q: %w", snapshot, ErrUnsafePath)
	}
	if err := interchange.WriteFile(filepath.Join(dir, snapshot), interchange.Encode(u.Prog, u.Table)); err != nil {
		return fmt.Errorf("driver: %w", err)
	}
	return nil
}
