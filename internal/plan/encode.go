// SPDX-License-Identifier: MPL-2.0

package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Formats lists the values Encode accepts.
func Formats() []string {
	return []string{FormatJSON, FormatYAML, FormatTOML}
}

// Encode renders the plan. The output is byte-identical for equal plans.
func (p *Plan) Encode(format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		return p.JSON()
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return nil, fmt.Errorf("encode plan as yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode plan as yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatTOML:
		out, err := toml.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode plan as toml: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
	}
}

// JSON renders the plan with four-space indentation and a trailing newline.
func (p *Plan) JSON() ([]byte, error) {
	out, err := json.MarshalIndent(p, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode plan as json: %w", err)
	}
	return append(out, '\n'), nil
}
