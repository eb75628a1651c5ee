package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// DevDirName is the temp subdirectory used by sandboxed development runs.
const DevDirName = "htmlrms-dev"

// IsDevRun reports whether the process was built by `go run` or `go test`,
// both of which place the binary in a temporary directory.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}
	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(os.TempDir())) {
		return true
	}
	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// ResolvePath applies the sandbox rules to a workspace path. Without
// forceTemp the path is returned as is. Otherwise paths already inside the
// temp directory are trusted (t.TempDir) and anything else is re-rooted
// under <tmp>/htmlrms-dev/<base>.
func ResolvePath(userPath string, forceTemp bool) string {
	if !forceTemp {
		if userPath == "" {
			return "."
		}
		return userPath
	}

	clean := filepath.Clean(userPath)
	if rel, err := filepath.Rel(os.TempDir(), clean); err == nil && filepath.IsAbs(clean) && !strings.HasPrefix(rel, "..") {
		return clean
	}

	sub := filepath.Base(clean)
	if userPath == "" || sub == "." || sub == string(os.PathSeparator) {
		sub = "default"
	}
	return filepath.Join(os.TempDir(), DevDirName, sub)
}
