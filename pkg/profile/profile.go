// Package profile loads negotiation configurations from YAML, TOML or JSON files
// and applies loosely typed overrides coming from HTTP bodies or tool arguments.
package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/bargain/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a profile encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a file extension. Unknown extensions read as YAML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	default:
		return FormatYAML
	}
}

// Load reads a profile file and returns the validated configuration.
// Fields missing from the file keep their DefaultConfig value.
func Load(path string) (domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Config{}, fmt.Errorf("failed to read profile: %w", err)
	}
	cfg, err := Parse(data, FormatOf(path))
	if err != nil {
		return domain.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a profile over DefaultConfig and validates the result.
// Unknown keys are rejected so a typo never silently falls back to a default.
func Parse(data []byte, format Format) (domain.Config, error) {
	cfg := domain.DefaultConfig()
	// Slices are replaced, not merged, when the profile names them.
	cfg.StepSchedule = nil
	cfg.Policy.ValueReasons = nil

	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return domain.Config{}, fmt.Errorf("unsupported profile format %q", format)
	}
	if err != nil {
		return domain.Config{}, fmt.Errorf("failed to parse %s profile: %w", format, err)
	}

	cfg = fillSlices(cfg)
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

func fillSlices(cfg domain.Config) domain.Config {
	def := domain.DefaultConfig()
	if cfg.StepSchedule == nil {
		cfg.StepSchedule = def.StepSchedule
	}
	if cfg.Policy.ValueReasons == nil {
		cfg.Policy.ValueReasons = def.Policy.ValueReasons
	}
	return cfg
}

// Decode applies overrides on top of base and validates the result.
// Keys use the snake_case names of the profile files; numbers may arrive as
// float64 or strings, as they do from JSON bodies and tool arguments.
func Decode(base domain.Config, overrides map[string]any) (domain.Config, error) {
	cfg := base.Clone()
	if len(overrides) == 0 {
		return cfg, cfg.Validate()
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          "mapstructure",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		ZeroFields:       true,
	})
	if err != nil {
		return domain.Config{}, err
	}
	if err := decoder.Decode(overrides); err != nil {
		return domain.Config{}, fmt.Errorf("failed to decode overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// Marshal renders a configuration in the given format.
func Marshal(cfg domain.Config, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(cfg, "", "  ")
	case FormatTOML:
		return toml.Marshal(cfg)
	case FormatYAML:
		return yaml.Marshal(cfg)
	default:
		return nil, fmt.Errorf("unsupported profile format %q", format)
	}
}
