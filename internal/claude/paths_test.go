package claude

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigDir_Default(t *testing.T) {
	os.Unsetenv("CLAUDE_CONFIG_DIR")

	dir := ConfigDir()
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".claude")

	if dir != expected {
		t.Errorf("ConfigDir() = %s, want %s", dir, expected)
	}
}

func TestConfigDir_EnvOverride(t *testing.T) {
	os.Setenv("CLAUDE_CONFIG_DIR", "/custom/path")
	defer os.Unsetenv("CLAUDE_CONFIG_DIR")

	dir := ConfigDir()
	if dir != "/custom/path" {
		t.Errorf("ConfigDir() = %s, want /custom/path", dir)
	}
}

func TestFindTranscript(t *testing.T) {
	projects := t.TempDir()
	projDir := filepath.Join(projects, "-Users-x-proj")
	if err := os.MkdirAll(projDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(projDir, "abc123.jsonl")
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	info, ok := FindTranscript(projects, "abc123")
	if !ok {
		t.Fatal("FindTranscript() = false, want true")
	}
	if info.Path != path {
		t.Errorf("Path = %s, want %s", info.Path, path)
	}
	if info.Project != "-Users-x-proj" {
		t.Errorf("Project = %s", info.Project)
	}
	if info.ModTime.IsZero() {
		t.Error("ModTime is zero")
	}
}

func TestFindTranscript_NotFound(t *testing.T) {
	if _, ok := FindTranscript(t.TempDir(), "nope"); ok {
		t.Error("FindTranscript() = true for missing session")
	}
	if _, ok := FindTranscript("/does/not/exist", "nope"); ok {
		t.Error("FindTranscript() = true for missing tree")
	}
}

func TestProjectFolder(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"-Users-x-proj", "x/proj"},
		{"-home-me-code-my-app", "my/app"},
		{"proj", "proj"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ProjectFolder(tc.in); got != tc.want {
			t.Errorf("ProjectFolder(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
