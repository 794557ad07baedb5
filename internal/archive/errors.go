// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"errors"
	"fmt"
)

var (
	// ErrDestinationExists is returned by Pack when the archive path is taken
	// and overwrite was not requested.
	ErrDestinationExists = errors.New("archive destination already exists")

	// ErrPackagingFailed wraps every other failure to produce the archive.
	ErrPackagingFailed = errors.New("archive creation failed")
)

// PackError names the path that could not be archived.
type PackError struct {
	Path string
	Err  error
}

func (e *PackError) Error() string {
	return fmt.Sprintf("packaging %s: %v", e.Path, e.Err)
}

// Unwrap exposes both ErrPackagingFailed and the underlying cause.
func (e *PackError) Unwrap() []error { return []error{ErrPackagingFailed, e.Err} }
