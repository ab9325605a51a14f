package pkg

import (
	"encoding/json"
	"os"
)

const PackageLockFileName = "package-lock.json"

// PackageLock reads the parts of package-lock.json that record installed
// versions. Lockfile v2/v3 use Packages; v1 uses Dependencies.
type PackageLock struct {
	Name            string                      `json:"name"`
	Version         string                      `json:"version"`
	LockfileVersion int                         `json:"lockfileVersion"`
	Packages        map[string]LockedDependency `json:"packages"`
	Dependencies    map[string]LockedDependency `json:"dependencies"`
}

type LockedDependency struct {
	Version  string `json:"version"`
	Resolved string `json:"resolved"`
	Dev      bool   `json:"dev"`
}

func LoadPackageLock(path string) (*PackageLock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lock PackageLock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, err
	}
	return &lock, nil
}

// InstalledVersion returns the top-level installed version of name.
func (l *PackageLock) InstalledVersion(name string) (string, bool) {
	if dep, ok := l.Packages["node_modules/"+name]; ok && dep.Version != "" {
		return dep.Version, true
	}
	if dep, ok := l.Dependencies[name]; ok && dep.Version != "" {
		return dep.Version, true
	}
	return "", false
}
