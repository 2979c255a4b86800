package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// outputFormat is a pflag.Value restricted to the supported renderings.
type outputFormat string

const (
	formatText outputFormat = "text"
	formatYAML outputFormat = "yaml"
	formatJSON outputFormat = "json"
)

func (f *outputFormat) String() string {
	return string(*f)
}

func (f *outputFormat) Set(s string) error {
	switch outputFormat(s) {
	case formatText, formatYAML, formatJSON:
		*f = outputFormat(s)
		return nil
	default:
		return fmt.Errorf("must be one of text, yaml, json")
	}
}

func (f *outputFormat) Type() string {
	return "format"
}

// render writes v as YAML or JSON, or hands off to text for the human
// format.
func render(w io.Writer, format outputFormat, v any, text func(io.Writer) error) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}
