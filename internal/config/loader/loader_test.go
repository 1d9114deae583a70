package loader

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func TestTOMLLoader_Load(t *testing.T) {
	fsys := fstest.MapFS{
		"wolfedit.toml": {Data: []byte("[editor]\nshiftWidth = 4\nexpandTab = false\n")},
	}

	cfg, err := NewTOMLLoaderWithFS(fsys, "wolfedit.toml").Load()
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	editor, ok := cfg["editor"].(map[string]any)
	if !ok {
		t.Fatalf("editor section missing: %#v", cfg)
	}
	if editor["shiftWidth"] != int64(4) {
		t.Errorf("shiftWidth = %#v, want 4", editor["shiftWidth"])
	}
	if editor["expandTab"] != false {
		t.Errorf("expandTab = %#v, want false", editor["expandTab"])
	}
}

func TestTOMLLoader_MissingFile(t *testing.T) {
	cfg, err := NewTOMLLoaderWithFS(fstest.MapFS{}, "absent.toml").Load()
	if err != nil {
		t.Errorf("Load error = %v, want nil for a missing file", err)
	}
	if cfg != nil {
		t.Errorf("cfg = %#v, want nil", cfg)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.toml": {Data: []byte("[editor]\nshiftWidth = = 4\n")},
	}

	_, err := NewTOMLLoaderWithFS(fsys, "bad.toml").Load()
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
	if pe.Path != "bad.toml" {
		t.Errorf("Path = %q", pe.Path)
	}
	if pe.Line != 2 {
		t.Errorf("Line = %d, want 2", pe.Line)
	}
}

func TestTOMLLoader_Includes(t *testing.T) {
	fsys := fstest.MapFS{
		"conf/main.toml": {Data: []byte("\"@include\" = \"base.toml\"\n[editor]\nshiftWidth = 2\n")},
		"conf/base.toml": {Data: []byte("[editor]\nshiftWidth = 8\ntabStop = 16\n")},
	}

	cfg, err := NewTOMLLoaderWithFS(fsys, "conf/main.toml").Load()
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	editor := cfg["editor"].(map[string]any)
	if editor["shiftWidth"] != int64(2) {
		t.Errorf("shiftWidth = %#v, want the including file's 2", editor["shiftWidth"])
	}
	if editor["tabStop"] != int64(16) {
		t.Errorf("tabStop = %#v, want 16 from the include", editor["tabStop"])
	}
	if _, ok := cfg["@include"]; ok {
		t.Error("@include should be removed from the result")
	}
}

func TestTOMLLoader_IncludeCycle(t *testing.T) {
	fsys := fstest.MapFS{
		"a.toml": {Data: []byte("\"@include\" = \"a.toml\"\n")},
	}

	_, err := NewTOMLLoaderWithFS(fsys, "a.toml").Load()
	if err == nil || !strings.Contains(err.Error(), "include depth exceeded") {
		t.Errorf("err = %v, want include depth error", err)
	}
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	cfg, err := NewTOMLLoader("").LoadFromReader(strings.NewReader("appName = \"x\""))
	if err != nil {
		t.Fatalf("LoadFromReader error = %v", err)
	}
	if cfg["appName"] != "x" {
		t.Errorf("appName = %#v", cfg["appName"])
	}
}

func TestEnvLoader_Load(t *testing.T) {
	env := []string{
		"WOLFEDIT_SHIFT_WIDTH=4",
		"WOLFEDIT_LOG_LEVEL=debug",
		"WOLFEDIT_EDITOR_EXPAND_TAB=off",
		"WOLFEDIT_=ignored",
		"OTHER_SHIFT_WIDTH=9",
	}

	cfg, err := NewEnvLoaderFrom("WOLFEDIT_", env).Load()
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	editor := cfg["editor"].(map[string]any)
	if editor["shiftWidth"] != int64(4) {
		t.Errorf("shiftWidth = %#v, want 4", editor["shiftWidth"])
	}
	if editor["expandTab"] != false {
		t.Errorf("expandTab = %#v, want false", editor["expandTab"])
	}
	if cfg["logging"].(map[string]any)["level"] != "debug" {
		t.Errorf("logging.level = %#v", cfg["logging"])
	}
	if len(cfg) != 2 {
		t.Errorf("unexpected sections: %#v", cfg)
	}
}

func TestEnvLoader_AddMapping(t *testing.T) {
	l := NewEnvLoaderFrom("WOLFEDIT_", []string{"WOLFEDIT_WIDTH=100"})
	l.AddMapping("WOLFEDIT_WIDTH", "statusLine.width")

	cfg, _ := l.Load()
	if cfg["statusLine"].(map[string]any)["width"] != int64(100) {
		t.Errorf("statusLine.width = %#v", cfg["statusLine"])
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"editor":  map[string]any{"shiftWidth": 8, "tabStop": 16},
		"appName": "a",
	}
	src := map[string]any{
		"editor":  map[string]any{"shiftWidth": 4},
		"appName": "b",
	}

	got := DeepMerge(dst, src)
	editor := got["editor"].(map[string]any)
	if editor["shiftWidth"] != 4 || editor["tabStop"] != 16 {
		t.Errorf("editor = %#v", editor)
	}
	if got["appName"] != "b" {
		t.Errorf("appName = %#v", got["appName"])
	}
}
