// SPDX-License-Identifier: MPL-2.0

// Package download fetches remote requirements files over HTTP(S) and
// optionally verifies their SHA256 digest.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
)

// maxBodyBytes bounds a downloaded file (50 MB).
const maxBodyBytes = 50 << 20

var (
	// ErrDownloadFailed covers transport errors and non-200 responses.
	ErrDownloadFailed = errors.New("download failed")

	// ErrChecksumMismatch indicates the computed SHA256 hash does not match the expected hash.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

type (
	// ChecksumError provides details about a checksum verification failure.
	ChecksumError struct {
		URL      string
		Expected string
		Got      string
	}

	// StatusError reports an unexpected HTTP status.
	StatusError struct {
		URL        string
		StatusCode int
	}

	// Client downloads files.
	Client struct {
		httpClient *http.Client
		userAgent  string
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)
)

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum verification failed for %s\nExpected: %s\nGot:      %s", e.URL, e.Expected, e.Got)
}

// Unwrap returns ErrChecksumMismatch so callers can use errors.Is.
func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

func (e *StatusError) Error() string {
	return fmt.Sprintf("downloading %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrDownloadFailed }

// WithHTTPClient sets a custom HTTP client, useful for tests or proxy configurations.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// NewClient creates a Client using http.DefaultClient and the "agentpack/dev" user agent.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		userAgent:  "agentpack/dev",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsRemote reports whether source is an http or https URL.
func IsRemote(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// Fetch downloads rawURL into a new file in dir and returns its path. When
// expectedSHA256 is not empty the content must match it; on mismatch the file
// is removed and a *ChecksumError is returned.
func (c *Client) Fetch(ctx context.Context, rawURL, dir, expectedSHA256 string) (_ string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %w", ErrDownloadFailed, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrDownloadFailed, redactURL(rawURL), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{URL: redactURL(rawURL), StatusCode: resp.StatusCode}
	}

	f, err := os.CreateTemp(dir, "*-"+fileName(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: creating temp file: %w", ErrDownloadFailed, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrDownloadFailed, closeErr)
		}
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(f, h), io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %w", ErrDownloadFailed, redactURL(rawURL), err)
	}
	if n > maxBodyBytes {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", ErrDownloadFailed, redactURL(rawURL), maxBodyBytes)
	}

	if expectedSHA256 != "" {
		got := hex.EncodeToString(h.Sum(nil))
		if !strings.EqualFold(got, expectedSHA256) {
			return "", &ChecksumError{URL: redactURL(rawURL), Expected: strings.ToLower(expectedSHA256), Got: got}
		}
	}

	return f.Name(), nil
}

func fileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "download"
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "download"
	}
	return name
}

// redactURL strips query parameters and fragments from a URL for safe inclusion
// in error messages, preventing accidental exposure of tokens or sensitive data.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
