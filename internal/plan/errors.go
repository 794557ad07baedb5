// SPDX-License-Identifier: MPL-2.0

package plan

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAgentSource is returned when neither agent_package_source nor agent_version is set.
	ErrNoAgentSource = errors.New("no agent source specified: set agent_package_source or agent_version")
	// ErrMandatoryExcluded is the sentinel error wrapped by MandatoryExcludedError.
	ErrMandatoryExcluded = errors.New("mandatory package cannot be excluded")
	// ErrUnknownCorePackage is the sentinel error wrapped by UnknownCorePackageError.
	ErrUnknownCorePackage = errors.New("unknown core package")
	// ErrUnknownFormat is returned by Encode for unsupported output formats.
	ErrUnknownFormat = errors.New("unknown plan format")
)

type (
	// MandatoryExcludedError names the mandatory package marked "exclude".
	MandatoryExcludedError struct {
		Name string
	}

	// UnknownCorePackageError names a core_packages or core_plugins key that is
	// not in the defaults table.
	UnknownCorePackageError struct {
		Table string
		Name  string
		Known []string
	}
)

func (e *MandatoryExcludedError) Error() string {
	return fmt.Sprintf("%s is mandatory and cannot be excluded", e.Name)
}

func (e *MandatoryExcludedError) Unwrap() error { return ErrMandatoryExcluded }

func (e *UnknownCorePackageError) Error() string {
	return fmt.Sprintf("%s: %q is not a known core package (known: %v)", e.Table, e.Name, e.Known)
}

func (e *UnknownCorePackageError) Unwrap() error { return ErrUnknownCorePackage }
