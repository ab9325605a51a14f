package pkg

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	PackageJSONFileName = "package.json"
	DefaultRegistry     = "https://npm.pkg.github.com"

	RollupScript  = "rollup -c"
	PublishScript = "rollup -c && npm publish"

	MainPath   = "dist/cjs/index.js"
	ModulePath = "dist/esm/index.js"
	TypesPath  = "dist/index.d.ts"
	DistDir    = "dist"
)

// PackageJSON is a read-only view of the fields npm-deploy manages.
type PackageJSON struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Private         bool              `json:"private"`
	Main            string            `json:"main"`
	Module          string            `json:"module"`
	Types           string            `json:"types"`
	Files           []string          `json:"files"`
	PublishConfig   map[string]string `json:"publishConfig"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Scripts         map[string]string `json:"scripts"`
}

func LoadPackageJSON(path string) (*PackageJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// Publisher identifies where the package is published: the GitHub account
// that owns it and the repository it is named after.
type Publisher struct {
	Owner string
	Repo  string
}

func (p Publisher) PackageName() string {
	return "@" + p.Owner + "/" + p.Repo
}

// ManifestPatcher rewrites package.json for publishing to the GitHub registry.
type ManifestPatcher struct {
	// RegistryBase is the registry the owner path is appended to.
	RegistryBase string
	// Identify is called after the manifest has been read and the scripts
	// set, so malformed input fails before the operator is asked anything.
	Identify func() (Publisher, error)
}

// Patch loads path, applies every field change in order and writes the
// result once. Fields it does not manage keep their values and position.
func (m *ManifestPatcher) Patch(path string) error {
	doc, err := LoadDocument(path)
	if err != nil {
		return err
	}
	if err := doc.RequireObject("scripts"); err != nil {
		return err
	}

	if err := addScripts(doc); err != nil {
		return err
	}
	publisher, err := m.Identify()
	if err != nil {
		return err
	}
	if err := addGitHubInfo(doc, m.registryBase(), publisher); err != nil {
		return err
	}
	if err := addProjectPaths(doc); err != nil {
		return err
	}
	if err := doc.Set("private", false); err != nil {
		return err
	}

	if err := ValidateManifest(doc.Bytes()); err != nil {
		return err
	}
	if err := doc.Save(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (m *ManifestPatcher) registryBase() string {
	if m.RegistryBase == "" {
		return DefaultRegistry
	}
	return strings.TrimRight(m.RegistryBase, "/")
}

func addScripts(doc *Document) error {
	if err := doc.Set("scripts.rollup", RollupScript); err != nil {
		return err
	}
	return doc.Set("scripts.pub", PublishScript)
}

func addGitHubInfo(doc *Document, registryBase string, p Publisher) error {
	if err := doc.Set("name", p.PackageName()); err != nil {
		return err
	}
	return doc.Set("publishConfig", map[string]string{
		"registry": registryBase + "/" + p.Owner,
	})
}

func addProjectPaths(doc *Document) error {
	fields := []struct {
		key   string
		value any
	}{
		{"main", MainPath},
		{"module", ModulePath},
		{"files", []string{DistDir}},
		{"types", TypesPath},
	}
	for _, f := range fields {
		if err := doc.Set(f.key, f.value); err != nil {
			return err
		}
	}
	return nil
}
