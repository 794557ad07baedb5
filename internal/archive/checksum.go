// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ChecksumSuffix is appended to the archive path for the sidecar file.
const ChecksumSuffix = ".sha256"

// ComputeFileHash returns the lowercase hex SHA256 digest of the file at path.
func ComputeFileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing file %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// WriteChecksum writes `<archive>.sha256` in sha256sum format
// ("<hash>  <basename>\n") and returns its path.
func WriteChecksum(archivePath string) (string, error) {
	sum, err := ComputeFileHash(archivePath)
	if err != nil {
		return "", &PackError{Path: archivePath, Err: err}
	}

	path := archivePath + ChecksumSuffix
	line := sum + "  " + filepath.Base(archivePath) + "\n"
	if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
		return "", &PackError{Path: path, Err: err}
	}
	return path, nil
}
