package platform

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFindConfig(t *testing.T) {
	// base/
	//   project/ (.cleverpad.toml)
	//     notes/
	//       drafts/
	//   empty/
	baseDir := t.TempDir()
	projectDir := filepath.Join(baseDir, "project")
	notesDir := filepath.Join(projectDir, "notes")
	draftsDir := filepath.Join(notesDir, "drafts")
	emptyDir := filepath.Join(baseDir, "empty")

	if err := os.MkdirAll(draftsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(emptyDir, 0o755); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(projectDir, ConfigFileName)
	if err := os.WriteFile(cfgPath, []byte("base_url = \"http://x\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// A directory with the config name must not match.
	if err := os.Mkdir(filepath.Join(notesDir, ConfigFileName), 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		startPath string
		want      string
		wantErr   bool
	}{
		{name: "start at project", startPath: projectDir, want: cfgPath},
		{name: "start in subdir", startPath: notesDir, want: cfgPath},
		{name: "start nested deeply", startPath: draftsDir, want: cfgPath},
		{name: "no config", startPath: emptyDir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindConfig(tt.startPath)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FindConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrNoConfig) {
					t.Errorf("FindConfig() error = %v, want ErrNoConfig", err)
				}
				return
			}
			if filepath.Clean(got) != filepath.Clean(tt.want) {
				t.Errorf("FindConfig() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveConfigPathPrefersExplicit(t *testing.T) {
	if got := ResolveConfigPath("/etc/custom.toml"); got != "/etc/custom.toml" {
		t.Errorf("ResolveConfigPath() = %v", got)
	}
}

func TestResolveStateDir(t *testing.T) {
	inTemp := filepath.Join(os.TempDir(), "already-safe")
	if got := ResolveStateDir(inTemp, true); got != filepath.Clean(inTemp) {
		t.Errorf("temp path re-rooted: %v", got)
	}

	got := ResolveStateDir("/home/someone/.config/cleverpad/state", true)
	want := filepath.Join(os.TempDir(), "cleverpad-dev", "state")
	if got != want {
		t.Errorf("ResolveStateDir() = %v, want %v", got, want)
	}

	if got := ResolveStateDir("/srv/state", false); got != "/srv/state" {
		t.Errorf("ResolveStateDir() without sandbox = %v", got)
	}
}
