package prefabs

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

//go:embed *.yaml
var PrefabsFS embed.FS

// diskDir is checked before the embedded copies so specs can be tuned
// without rebuilding.
var diskDir = "prefabs"

// SetDiskDir changes the override directory; an empty dir disables disk
// overrides.
func SetDiskDir(dir string) {
	diskDir = dir
}

func LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if diskDir != "" {
		if data, err := os.ReadFile(diskPrefabPath(clean)); err == nil {
			return data, nil
		}
	}
	return ScriptsFS.ReadFile(clean)
}

func Load(name string) ([]byte, error) {
	clean := cleanPrefabPath(name)
	if diskDir != "" {
		if data, err := os.ReadFile(diskPrefabPath(clean)); err == nil {
			return data, nil
		}
	}
	return PrefabsFS.ReadFile(clean)
}

func cleanPrefabPath(path string) string {
	if path == "" {
		return ""
	}
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		return after
	}
	return s
}

func cleanScriptPath(path string) string {
	if path == "" {
		return ""
	}

	s := filepath.ToSlash(path)

	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}

	return fmt.Sprintf("scripts/%s", s)
}

func diskPrefabPath(clean string) string {
	return filepath.Join(diskDir, filepath.FromSlash(clean))
}
