package penguin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFileJSON(t *testing.T) {
	path := writeTempConfig(t, "config.json", `{
		"bind_addr": "127.0.0.1:8080",
		"control_path": "/ctl",
		"mounts": {"/": "./public"},
		"proxy": "http://localhost:3000"
	}`)

	fc, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", fc.BindAddr)
	assert.Equal(t, "/ctl", fc.ControlPath)
	assert.Equal(t, "./public", fc.Mounts["/"])
	assert.Equal(t, "http://localhost:3000", fc.Proxy)
}

func TestLoadConfigFileTOML(t *testing.T) {
	path := writeTempConfig(t, "config.toml", `
bind_addr = "127.0.0.1:8080"
control_path = "/ctl"

[mounts]
"/" = "./public"
`)

	fc, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", fc.BindAddr)
	assert.Equal(t, "./public", fc.Mounts["/"])
}

func TestLoadConfigFileYAML(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", `
bind_addr: "127.0.0.1:8080"
mounts:
  "/": "./public"
watch:
  - "./public"
`)

	fc, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", fc.BindAddr)
	assert.Equal(t, []string{"./public"}, fc.Watch)
}

func TestLoadConfigFileUnsupportedExtension(t *testing.T) {
	path := writeTempConfig(t, "config.ini", "bind_addr = 127.0.0.1:8080")

	_, err := LoadConfigFile(path)
	assert.Error(t, err)
}

func TestFileConfigApplyTo(t *testing.T) {
	fc := FileConfig{
		BindAddr:    "127.0.0.1:9090",
		ControlPath: "/ctl",
		Mounts:      map[string]string{"/static": "./public"},
		Proxy:       "http://localhost:3000",
	}

	builder, err := fc.ApplyTo(NewBuilder(":0"))
	require.NoError(t, err)

	config, err := builder.Build()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", config.BindAddr)
	assert.Equal(t, "/ctl", config.ControlPath)
	assert.Equal(t, "./public", config.Mounts[0].FSPath)
	require.NotNil(t, config.Proxy)
}

func TestFileConfigApplyToRejectsBadProxy(t *testing.T) {
	fc := FileConfig{Proxy: "not-a-target"}

	_, err := fc.ApplyTo(NewBuilder(":0"))
	assert.Error(t, err)
}

func writeTempConfig(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}
