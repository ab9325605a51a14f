package pkg

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DefaultDevDependencies is everything rollup.config.js and the babel/jest
// setup of a component library need at build time.
var DefaultDevDependencies = []string{
	"rollup",
	"@rollup/plugin-node-resolve",
	"@rollup/plugin-typescript",
	"@rollup/plugin-commonjs",
	"rollup-plugin-dts",
	"rollup-plugin-postcss",
	"rollup-plugin-peer-deps-external",
	"rollup-plugin-terser",
	"@babel/core",
	"@babel/preset-env",
	"@babel/preset-react",
	"@babel/preset-typescript",
	"babel-jest",
}

// DependencySpec is a package name with an optional version range or tag,
// as accepted by `npm install`.
type DependencySpec struct {
	Name  string
	Range string
}

// ParseDependencySpec accepts name, name@range, @scope/name and
// @scope/name@range. The range must be "latest" or a semver constraint.
func ParseDependencySpec(raw string) (DependencySpec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DependencySpec{}, fmt.Errorf("empty dependency")
	}

	name, version := raw, ""
	hasVersion := false
	// index 0 is the scope marker, not a version separator
	if i := strings.LastIndex(raw, "@"); i > 0 {
		name, version = raw[:i], raw[i+1:]
		hasVersion = true
	}

	if strings.HasPrefix(name, "@") {
		scope, bare, ok := strings.Cut(name[1:], "/")
		if !ok || scope == "" || bare == "" {
			return DependencySpec{}, fmt.Errorf("invalid scoped package name %q", name)
		}
	}
	if strings.ContainsAny(name, " \t\"'") {
		return DependencySpec{}, fmt.Errorf("invalid package name %q", name)
	}

	if hasVersion {
		if version == "" {
			return DependencySpec{}, fmt.Errorf("empty version for %s", name)
		}
		// cmd /C has no escape for a quote inside a quoted argument
		if strings.ContainsAny(version, "\"'`") {
			return DependencySpec{}, fmt.Errorf("invalid version range %q for %s: quotes are not allowed", version, name)
		}
		if version != "latest" {
			if _, err := semver.NewConstraint(version); err != nil {
				return DependencySpec{}, fmt.Errorf("invalid version range %q for %s: %w", version, name, err)
			}
		}
	}

	return DependencySpec{Name: name, Range: version}, nil
}

func ParseDependencySpecs(raw []string) ([]DependencySpec, error) {
	specs := make([]DependencySpec, 0, len(raw))
	for _, r := range raw {
		spec, err := ParseDependencySpec(r)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (d DependencySpec) String() string {
	if d.Range == "" {
		return d.Name
	}
	return d.Name + "@" + d.Range
}
