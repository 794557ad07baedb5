// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultOSReleasePaths are tried in order by DetectHost.
var DefaultOSReleasePaths = []string{"/etc/os-release", "/usr/lib/os-release"}

// DetectHost reads the distribution name and release codename from the first
// readable os-release file. The release falls back from VERSION_CODENAME to
// UBUNTU_CODENAME to VERSION_ID.
func DetectHost(paths ...string) (distribution, release string, err error) {
	if len(paths) == 0 {
		paths = DefaultOSReleasePaths
	}

	var lastErr error
	for _, p := range paths {
		vars, readErr := godotenv.Read(p)
		if readErr != nil {
			lastErr = readErr
			continue
		}

		distribution = strings.TrimSpace(vars["NAME"])
		release = firstNonEmpty(vars["VERSION_CODENAME"], vars["UBUNTU_CODENAME"], vars["VERSION_ID"])
		if distribution == "" || release == "" {
			return "", "", fmt.Errorf("%w: %s has no NAME or release codename", ErrHostUndetected, p)
		}
		return distribution, release, nil
	}

	return "", "", fmt.Errorf("%w: %w", ErrHostUndetected, lastErr)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
