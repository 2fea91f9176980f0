package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEncodeCmd(t *testing.T) {
	out, err := execute(t, "encode", "%s and %d", "s:x", "i:7")
	require.NoError(t, err)
	assert.Equal(t, "arena: 7807000000\nrefs:  [0 1]\ntext:  x and 7\n", out)
}

func TestEncodeCmd_JSON(t *testing.T) {
	out, err := execute(t, "encode", "%b%u", "b:255", "u:1", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"format":"%b%u","arena":"ff01000000","refs":[0,1],"slots":["ff","01000000"]}`, out)
}

func TestEncodeCmd_Errors(t *testing.T) {
	_, err := execute(t, "encode", "%d", "s:x")
	assert.Error(t, err)

	_, err = execute(t, "encode", "%d %d", "i:1")
	assert.Error(t, err)

	_, err = execute(t, "encode")
	assert.Error(t, err)
}

func TestEncodeRenderCmd_Capture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.bin")

	_, err := execute(t, "encode", "hello %s", "s:world", "--out", path)
	require.NoError(t, err)
	_, err = execute(t, "encode", "%c%c = %f", "c:p", "c:i", "f:3.25", "-o", path)
	require.NoError(t, err)
	_, err = execute(t, "encode", "%{Vec2}", "{Vec2}:0x40", "-o", path)
	require.NoError(t, err)

	out, err := execute(t, "render", path)
	require.NoError(t, err)
	assert.Equal(t, "hello world\npi = 3.25\nVec2 0x40\n", out)
}

func TestRenderCmd_MissingFile(t *testing.T) {
	_, err := execute(t, "render", filepath.Join(t.TempDir(), "none.bin"))
	assert.Error(t, err)
}

func TestRunCmd_Demo(t *testing.T) {
	out, err := execute(t, "run", "--demo", "--frames", "1")
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!\n"+
		"BG Color = Color_RGBa {\n"+
		"    \"r\": 51,\n"+
		"    \"g\": 51,\n"+
		"    \"b\": 51,\n"+
		"    \"a\": 255\n"+
		"}\n"+
		"r = 51, g = 51, b = 51, a = 255\n"+
		"init\n"+
		"  clear_background rgba(51, 51, 51, 1)\n"+
		"frame 0: drawn\n"+
		"  clear_background rgba(51, 51, 51, 1)\n"+
		"  set_fill rgba(255, 0, 0, 1)\n"+
		"  fill_rect x=670 y=355 w=100 h=100 rgba(255, 0, 0, 1)\n", out)
}

func TestRunCmd_SlowFPSSkipsFrames(t *testing.T) {
	out, err := execute(t, "run", "--demo", "-n", "2", "--fps", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "frame 0: skipped\nframe 1: skipped\n")
}

func TestRunCmd_NeedsGuest(t *testing.T) {
	_, err := execute(t, "run")
	assert.Error(t, err)
}

func TestLayoutsCmd_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	layouts := filepath.Join(dir, "layouts.yaml")
	require.NoError(t, os.WriteFile(layouts, []byte(`structs:
  - name: Particle
    fields:
      - {name: pos, type: Vec2}
      - {name: color, type: Color_RGBa, ref: true}
`), 0o644))
	config := filepath.Join(dir, "printnf.yaml")
	require.NoError(t, os.WriteFile(config, []byte("layouts: "+layouts+"\nlog-level: error\n"), 0o644))

	out, err := execute(t, "layouts", "--config", config)
	require.NoError(t, err)
	assert.Contains(t, out, "Particle (12 bytes)\n")
	assert.Contains(t, out, "  0    pos        Vec2\n")
	assert.Contains(t, out, "  8    color      *Color_RGBa\n")
}

func TestRootCmd_BadConfig(t *testing.T) {
	_, err := execute(t, "layouts", "--log-level", "loud")
	assert.Error(t, err)

	_, err = execute(t, "layouts", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLayoutsCmd_Patterns(t *testing.T) {
	out, err := execute(t, "layouts", "Vec*", "Color_*")
	require.NoError(t, err)
	assert.Contains(t, out, "Vec2 (8 bytes)\n")
	assert.Contains(t, out, "Color_RGBa (4 bytes)\n")
	assert.NotContains(t, out, "Rect (")

	_, err = execute(t, "layouts", "[")
	assert.Error(t, err)
}
