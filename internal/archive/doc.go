// SPDX-License-Identifier: MPL-2.0

// Package archive names and writes the agent tarball.
//
// The archive holds the environment directory tree under its own relative
// path (for example `cloudify/env/bin/pip`), gzip compressed. Entries are
// written in lexical order with their modes and modification times so two
// packs of the same tree differ only when the tree does.
package archive
