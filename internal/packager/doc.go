// SPDX-License-Identifier: MPL-2.0

// Package packager runs one packaging run end to end: resolve the plan,
// prepare the environment, install, remove exclusions, validate, write the
// plugin manifest and produce the archive.
//
// Every step is sequential and the first failure aborts the run. A failed run
// leaves the environment in place for inspection and never leaves an archive.
package packager
