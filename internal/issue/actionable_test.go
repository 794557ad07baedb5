// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "create environment"},
			expected: "failed to create environment",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "create environment", Resource: "cloudify/env"},
			expected: "failed to create environment: cloudify/env",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "install core package",
				Resource:  "cloudify-rest-client",
				Cause:     errors.New("exit status 1"),
			},
			expected: "failed to install core package: cloudify-rest-client: exit status 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("install failed")
	wrapped := fmt.Errorf("pip: %w", sentinel)
	err := NewErrorContext().WithOperation("install agent").Wrap(wrapped).BuildError()

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should find the sentinel through the cause chain")
	}

	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatal("errors.As should find *ActionableError")
	}
	if (&ActionableError{Operation: "x"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil without a cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	root := errors.New("connection refused")
	err := &ActionableError{
		Operation:   "download requirements",
		Resource:    "https://example.com/req.txt",
		Suggestions: []string{"Check HTTPS_PROXY", "Retry later"},
		Cause:       fmt.Errorf("GET: %w", root),
	}

	short := err.Format(false)
	if !strings.HasPrefix(short, "failed to download requirements: https://example.com/req.txt: GET: connection refused") {
		t.Errorf("Format(false) has unexpected first line:\n%s", short)
	}
	if !strings.Contains(short, "\n  • Check HTTPS_PROXY\n  • Retry later") {
		t.Errorf("Format(false) missing suggestions:\n%s", short)
	}
	if strings.Contains(short, "Error chain") {
		t.Error("Format(false) should not include the error chain")
	}

	long := err.Format(true)
	for _, want := range []string{"Error chain:", "1. GET: connection refused", "2. connection refused"} {
		if !strings.Contains(long, want) {
			t.Errorf("Format(true) missing %q:\n%s", want, long)
		}
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("BuildError() without operation = %v, want untyped nil", err)
	}

	cause := errors.New("boom")
	ae := NewErrorContext().
		WithOperation("uninstall excluded package").
		WithResource("cloudify-diamond-plugin").
		WithIssue(UninstallFailedId).
		WithSuggestion("Run with -v").
		Wrap(cause).
		Build()

	if ae.Operation != "uninstall excluded package" || ae.Resource != "cloudify-diamond-plugin" {
		t.Errorf("unexpected context: %+v", ae)
	}
	if ae.Issue != UninstallFailedId {
		t.Errorf("Issue = %d, want UninstallFailedId", ae.Issue)
	}
	if !ae.HasSuggestions() || ae.Suggestions[0] != "Run with -v" {
		t.Errorf("Suggestions = %v", ae.Suggestions)
	}
	if !errors.Is(ae, cause) {
		t.Error("cause not wrapped")
	}
}

func TestErrorContext_BuildCopiesSuggestions(t *testing.T) {
	t.Parallel()

	ctx := NewErrorContext().WithOperation("pack archive").WithSuggestion("first")
	a := ctx.Build()
	ctx.WithSuggestion("second")
	b := ctx.Build()

	if len(a.Suggestions) != 1 {
		t.Errorf("earlier Build() result changed: %v", a.Suggestions)
	}
	if len(b.Suggestions) != 2 {
		t.Errorf("later Build() = %v, want two suggestions", b.Suggestions)
	}
}

func TestWrapWithContext(t *testing.T) {
	t.Parallel()

	if WrapWithContext(nil, "op", "res") != nil {
		t.Error("WrapWithContext(nil) should return nil")
	}

	err := WrapWithContext(errors.New("denied"), "write manifest", "included_plugins.py")
	if got := err.Error(); got != "failed to write manifest: included_plugins.py: denied" {
		t.Errorf("Error() = %q", got)
	}
}
