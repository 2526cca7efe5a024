//go:build !tinygo

package hwconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"
)

// Load reads a YAML board description. Keys it omits keep their Default
// values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hardware config: %w", err)
	}
	return Parse(data)
}

// Parse is Load for an in-memory document.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse hardware config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid hardware config: %w", err)
	}
	return &cfg, nil
}

// Marshal renders c as YAML.
func Marshal(c *Config) ([]byte, error) {
	return yaml.Marshal(c)
}

func (f *Frequency) UnmarshalYAML(n *yaml.Node) error {
	var v physic.Frequency
	if err := v.Set(n.Value); err != nil {
		return fmt.Errorf("line %d: frequency %q: %w", n.Line, n.Value, err)
	}
	f.Frequency = v
	return nil
}

func (f Frequency) MarshalYAML() (any, error) {
	return f.String(), nil
}
