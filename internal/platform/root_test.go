package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindRoot(t *testing.T) {
	// baseDir/
	//   repo/ (.htmlrms)
	//     subdir/nested/
	//   configured/ (htmlrms.yaml)
	//   empty/
	baseDir := t.TempDir()
	repoDir := filepath.Join(baseDir, "repo")
	subDir := filepath.Join(repoDir, "subdir")
	nestedDir := filepath.Join(subDir, "nested")
	configuredDir := filepath.Join(baseDir, "configured")
	emptyDir := filepath.Join(baseDir, "empty")

	for _, dir := range []string{nestedDir, configuredDir, emptyDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(repoDir, SystemDir), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configuredDir, ConfigFileName), []byte("adapter: fs\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		startPath string
		wantRoot  string
		wantErr   bool
	}{
		{name: "Start at Root", startPath: repoDir, wantRoot: repoDir},
		{name: "Start in Subdir", startPath: subDir, wantRoot: repoDir},
		{name: "Start Nested Deeply", startPath: nestedDir, wantRoot: repoDir},
		{name: "Config File Marker", startPath: configuredDir, wantRoot: configuredDir},
		{name: "No Root Found", startPath: emptyDir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.startPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("FindRoot() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != "" && filepath.Clean(got) != filepath.Clean(tt.wantRoot) {
				t.Errorf("FindRoot() = %v, want %v", got, tt.wantRoot)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	devBase := filepath.Join(os.TempDir(), DevDirName)
	inTemp := t.TempDir()

	tests := []struct {
		name      string
		userPath  string
		forceTemp bool
		expected  string
	}{
		{name: "Normal Mode - Current Dir", userPath: ".", expected: "."},
		{name: "Normal Mode - Empty", userPath: "", expected: "."},
		{name: "Normal Mode - Specific Path", userPath: "/some/path", expected: "/some/path"},
		{name: "Dev Mode - Empty Path", userPath: "", forceTemp: true, expected: filepath.Join(devBase, "default")},
		{name: "Dev Mode - Current Dir", userPath: ".", forceTemp: true, expected: filepath.Join(devBase, "default")},
		{name: "Dev Mode - Relative Name", userPath: "shop", forceTemp: true, expected: filepath.Join(devBase, "shop")},
		{name: "Dev Mode - Clean Name", userPath: "../bad/path", forceTemp: true, expected: filepath.Join(devBase, "path")},
		{name: "Dev Mode - Exception for Temp Dir", userPath: inTemp, forceTemp: true, expected: inTemp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolvePath(tt.userPath, tt.forceTemp); got != tt.expected {
				t.Errorf("ResolvePath(%q, %v) = %q, want %q", tt.userPath, tt.forceTemp, got, tt.expected)
			}
		})
	}
}

func TestIsDevRun(t *testing.T) {
	if !IsDevRun() {
		t.Error("expected a test binary to be detected as a dev run")
	}
}
