package pkg

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

var ErrBinNotFound = errors.New("binary not found")

// FindBin checks that an installed package declares binName in its bin field,
// that the target script exists, and that the package manager linked it into
// node_modules/.bin. It returns the link path.
func FindBin(projectDir, pkgName, binName string) (string, error) {
	pkgDir := filepath.Join(projectDir, "node_modules", filepath.FromSlash(pkgName))
	content, err := os.ReadFile(filepath.Join(pkgDir, "package.json"))
	if err != nil {
		return "", fmt.Errorf("%s is not installed: %w", pkgName, err)
	}

	var pkgMeta map[string]interface{}
	if err := json.Unmarshal(content, &pkgMeta); err != nil {
		return "", fmt.Errorf("%s package.json: %w", pkgName, err)
	}

	binMap := make(map[string]string)
	switch binVal := pkgMeta["bin"].(type) {
	case string:
		if name, ok := pkgMeta["name"].(string); ok {
			binMap[filepath.Base(name)] = binVal
		}
	case map[string]interface{}:
		for k, v := range binVal {
			if s, ok := v.(string); ok {
				binMap[k] = s
			}
		}
	}

	binRelPath, ok := binMap[binName]
	if !ok {
		return "", fmt.Errorf("%s does not declare %s: %w", pkgName, binName, ErrBinNotFound)
	}
	if _, err := os.Stat(filepath.Join(pkgDir, filepath.FromSlash(binRelPath))); err != nil {
		return "", fmt.Errorf("%s target %s: %w", binName, binRelPath, ErrBinNotFound)
	}

	binLink := filepath.Join(projectDir, "node_modules", ".bin", binName)
	if runtime.GOOS == "windows" {
		binLink += ".cmd"
	}
	if _, err := os.Stat(binLink); err != nil {
		return "", fmt.Errorf("%s is not linked in node_modules/.bin: %w", binName, ErrBinNotFound)
	}
	return binLink, nil
}
