package dist

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FilesystemError reports a staging or copy failure during
// distribution. Any such failure aborts the action before a manifest is
// written.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// Layout describes where staged files land inside the distribution
// root.
type Layout struct {
	// Root is the distribution output directory
	Root string

	// BootBinary is the staged artifact path relative to Root
	BootBinary string

	// AuxDir is the directory for auxiliary files relative to Root
	AuxDir string
}

// DefaultLayout is the UEFI boot tree the firmware expects.
func DefaultLayout(root string) Layout {
	return Layout{
		Root:       root,
		BootBinary: filepath.Join("EFI", "BOOT", "BOOTX64.EFI"),
		AuxDir:     "boot",
	}
}

// BinaryPath returns the absolute staged artifact path.
func (l Layout) BinaryPath() string {
	return filepath.Join(l.Root, l.BootBinary)
}

// Stage copies the artifact and auxiliary files into the layout.
// Auxiliary files that do not exist in the source tree are skipped; any
// real copy failure aborts staging.
func Stage(layout Layout, artifact string, auxFiles []string, srcRoot string) error {
	dest := layout.BinaryPath()
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return &FilesystemError{Op: "create dist tree", Path: filepath.Dir(dest), Err: err}
	}
	if err := copyFile(artifact, dest); err != nil {
		return err
	}

	auxDir := filepath.Join(layout.Root, layout.AuxDir)
	if err := os.MkdirAll(auxDir, 0o755); err != nil {
		return &FilesystemError{Op: "create dist tree", Path: auxDir, Err: err}
	}
	for _, name := range auxFiles {
		src := filepath.Join(srcRoot, name)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		if err := copyFile(src, filepath.Join(auxDir, filepath.Base(name))); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return &FilesystemError{Op: "copy", Path: src, Err: err}
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return &FilesystemError{Op: "copy", Path: dst, Err: err}
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return &FilesystemError{Op: "copy", Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		return &FilesystemError{Op: "copy", Path: dst, Err: err}
	}
	return nil
}
