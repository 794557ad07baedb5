// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Options controls Pack.
type Options struct {
	// Overwrite replaces an existing destination instead of failing.
	Overwrite bool
	// Level is the gzip level; zero selects gzip.DefaultCompression.
	Level int
}

// Pack writes the tree rooted at source to dest as a gzip compressed tar.
//
// Entries are named after source as given, cleaned and without a leading
// slash. A failed pack removes the partial file.
func Pack(ctx context.Context, source, dest string, opts Options) (err error) {
	info, err := os.Stat(source)
	if err != nil {
		return &PackError{Path: source, Err: err}
	}
	if !info.IsDir() {
		return &PackError{Path: source, Err: errors.New("not a directory")}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if opts.Overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(dest, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrDestinationExists, dest)
		}
		return &PackError{Path: dest, Err: err}
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = &PackError{Path: dest, Err: closeErr}
		}
		if err != nil {
			_ = os.Remove(dest)
		}
	}()

	level := opts.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}
	gz, err := gzip.NewWriterLevel(f, level)
	if err != nil {
		return &PackError{Path: dest, Err: err}
	}

	tw := tar.NewWriter(gz)
	if err := writeTree(ctx, tw, source); err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return &PackError{Path: dest, Err: err}
	}
	if err := gz.Close(); err != nil {
		return &PackError{Path: dest, Err: err}
	}
	return nil
}

// ArchiveRoot returns the entry prefix Pack uses for source.
func ArchiveRoot(source string) string {
	root := filepath.ToSlash(filepath.Clean(source))
	root = strings.TrimLeft(root, "/")
	if root == "" || root == "." {
		return "."
	}
	return root
}

func writeTree(ctx context.Context, tw *tar.Writer, source string) error {
	root := ArchiveRoot(source)

	// WalkDir visits entries in lexical order.
	return filepath.WalkDir(source, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return &PackError{Path: path, Err: walkErr}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(source, path)
		if err != nil {
			return &PackError{Path: path, Err: err}
		}
		name := root
		if rel != "." {
			name = root + "/" + filepath.ToSlash(rel)
		}

		info, err := os.Lstat(path)
		if err != nil {
			return &PackError{Path: path, Err: err}
		}

		var link string
		if info.Mode()&fs.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return &PackError{Path: path, Err: err}
			}
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return &PackError{Path: path, Err: err}
		}
		hdr.Name = name
		if info.IsDir() {
			hdr.Name += "/"
		}
		// Owner names differ between build hosts.
		hdr.Uname, hdr.Gname = "", ""

		if err := tw.WriteHeader(hdr); err != nil {
			return &PackError{Path: path, Err: err}
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return copyFile(tw, path)
	})
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &PackError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(w, f); err != nil {
		return &PackError{Path: path, Err: err}
	}
	return nil
}
