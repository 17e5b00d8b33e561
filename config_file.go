package penguin

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// FileConfig is the shape a config file is decoded onto before being fed
// through Builder/Build's validation, mirroring Config's fields with
// mapstructure tags so JSON/TOML/YAML keys stay snake_case regardless of
// the source format.
type FileConfig struct {
	BindAddr    string            `mapstructure:"bind_addr"`
	ControlPath string            `mapstructure:"control_path"`
	Mounts      map[string]string `mapstructure:"mounts"`
	Proxy       string            `mapstructure:"proxy"`
	Watch       []string          `mapstructure:"watch"`
}

// LoadConfigFile reads path (.json, .toml, .yaml, or .yml) into a
// FileConfig. It decodes into a generic map first and then onto the
// struct via mapstructure, the same two-step path air.Serve uses for its
// own ConfigFile.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig

	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}

	m := map[string]interface{}{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(b, &m)
	case ".toml":
		err = toml.Unmarshal(b, &m)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &m)
	default:
		err = fmt.Errorf("penguin: unsupported config file extension: %s", ext)
	}
	if err != nil {
		return fc, err
	}

	if err := mapstructure.Decode(m, &fc); err != nil {
		return fc, err
	}

	return fc, nil
}

// ApplyTo layers fc onto b, letting the caller apply CLI flags afterward.
// Builder setters called afterward replace the file's bind address, control
// path and proxy target; mounts accumulate instead, so a URI path given both
// in the file and afterward makes Build fail with ErrDuplicateMount.
func (fc FileConfig) ApplyTo(b *Builder) (*Builder, error) {
	if fc.BindAddr != "" {
		b.BindAddr(fc.BindAddr)
	}

	for uriPath, fsPath := range fc.Mounts {
		b.Mount(uriPath, fsPath)
	}

	if fc.ControlPath != "" {
		b.ControlPath(fc.ControlPath)
	}

	if fc.Proxy != "" {
		target, err := ParseProxyTarget(fc.Proxy)
		if err != nil {
			return nil, fmt.Errorf("penguin: config file proxy: %w", err)
		}
		b.Proxy(target)
	}

	return b, nil
}
