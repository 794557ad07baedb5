// SPDX-License-Identifier: MPL-2.0

// Package verify checks that every recorded package is present in the
// environment's installed-package listing.
package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agentpack/agentpack/internal/plan"
)

// ErrValidationFailed is the sentinel wrapped by ValidationError.
var ErrValidationFailed = errors.New("validation failed")

type (
	// Lister returns the environment's `pip freeze` output, one line per entry.
	Lister interface {
		Freeze(ctx context.Context) ([]string, error)
	}

	// ValidationError lists every package that could not be found.
	ValidationError struct {
		Missing []string
	}
)

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%d package(s) not installed: %s", len(e.Missing), strings.Join(e.Missing, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidationFailed }

// Validate queries the listing once and reports all names that are missing.
// A name is present when its normalised form is a substring of a normalised
// listing line, so `cloudify_agent` matches `cloudify-agent==4.0`.
func Validate(ctx context.Context, env Lister, names []string) error {
	lines, err := env.Freeze(ctx)
	if err != nil {
		return fmt.Errorf("list installed packages: %w", err)
	}
	return Check(lines, names)
}

// Check is Validate against an already captured listing.
func Check(lines, names []string) error {
	normalized := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			normalized = append(normalized, plan.ModuleName(line))
		}
	}

	var missing []string
	for _, name := range names {
		if !installed(normalized, plan.ModuleName(name)) {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

func installed(lines []string, name string) bool {
	if name == "" {
		return true
	}
	for _, line := range lines {
		if strings.Contains(line, name) {
			return true
		}
	}
	return false
}
