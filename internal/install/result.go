// SPDX-License-Identifier: MPL-2.0

package install

import "slices"

// ResultSet accumulates what a run installed, in installation order.
type ResultSet struct {
	Packages []string `json:"installed_packages"`
	Plugins  []string `json:"installed_plugins"`
}

func (r *ResultSet) addPackage(name string) {
	if !slices.Contains(r.Packages, name) {
		r.Packages = append(r.Packages, name)
	}
}

func (r *ResultSet) addPlugin(name string) {
	if !slices.Contains(r.Plugins, name) {
		r.Plugins = append(r.Plugins, name)
	}
}

// All returns packages followed by plugins.
func (r *ResultSet) All() []string {
	return slices.Concat(r.Packages, r.Plugins)
}
