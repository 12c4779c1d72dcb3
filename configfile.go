package rwebserve

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// LoadConfigFile reads path, unmarshals it by extension (.json, .toml,
// .yaml/.yml, .ini) into a generic map, and decodes that map into cfg
// via mapstructure (§1.1). Views, SSEOpeners, ResourceLoader,
// TemplateEngine, Clock and Logger are never set by a config file: they
// carry the `mapstructure:"-"` tag and must be assigned in code.
func LoadConfigFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	m, err := unmarshalConfigFile(path, raw)
	if err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("building config decoder: %w", err)
	}
	if err := decoder.Decode(m); err != nil {
		return fmt.Errorf("decoding config file: %w", err)
	}
	return nil
}

func unmarshalConfigFile(path string, raw []byte) (map[string]interface{}, error) {
	m := map[string]interface{}{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
	case ".toml":
		if err := toml.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
	case ".ini":
		f, err := ini.Load(raw)
		if err != nil {
			return nil, err
		}
		for _, section := range f.Sections() {
			for _, key := range section.Keys() {
				m[key.Name()] = key.Value()
			}
		}
	default:
		return nil, fmt.Errorf("unrecognized config file extension %q", filepath.Ext(path))
	}

	return m, nil
}
