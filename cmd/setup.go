package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"slices"

	"go.uber.org/zap"

	"github.com/sojebsikder/npm-deploy/pkg"
)

// SetupOptions configures one run of the four setup steps.
type SetupOptions struct {
	Dir            string
	Config         *pkg.Config
	AssumeYes      bool
	Owner          string
	Repo           string
	VerifyRegistry bool

	Runner   pkg.Runner
	Registry *pkg.RegistryClient
	In       io.Reader
	Out      io.Writer
	Logger   *zap.Logger
}

// RunSetup writes rollup.config.js, installs the dev dependencies, then
// patches package.json and tsconfig.json. The first failing step stops the
// run and files written by earlier steps stay as they are.
func RunSetup(ctx context.Context, opts SetupOptions) error {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = pkg.DefaultConfig()
	}
	runner := opts.Runner
	if runner == nil {
		runner = pkg.NewShellRunner(opts.Dir)
	}
	prompter := pkg.NewPrompter(opts.In, opts.Out)

	specs, err := cfg.DependencySpecs()
	if err != nil {
		return err
	}

	rollupPath := filepath.Join(opts.Dir, cfg.RollupConfig)
	written, err := pkg.WriteRollupConfig(rollupPath, prompter, opts.AssumeYes)
	if err != nil {
		return err
	}
	log.Info("Rollup config", zap.String("path", rollupPath), zap.Bool("written", written))

	if opts.VerifyRegistry {
		registry := opts.Registry
		if registry == nil {
			registry = pkg.NewRegistryClient(cfg.NPMRegistry)
		}
		log.Info("Verifying dev dependencies against registry", zap.String("registry", registry.BaseURL))
		if err := pkg.VerifyDependencies(ctx, log, registry, specs); err != nil {
			return fmt.Errorf("registry check: %w", err)
		}
	}

	if err := pkg.InstallDevDependencies(ctx, log, runner, cfg.PackageManager, specs); err != nil {
		return err
	}
	reportInstall(log, opts.Dir, specs)

	manifestPath := filepath.Join(opts.Dir, pkg.PackageJSONFileName)
	patcher := &pkg.ManifestPatcher{
		RegistryBase: cfg.Registry,
		Identify: func() (pkg.Publisher, error) {
			return identify(prompter, opts.Owner, opts.Repo)
		},
	}
	if err := patcher.Patch(manifestPath); err != nil {
		return fmt.Errorf("patch %s: %w", pkg.PackageJSONFileName, err)
	}
	if manifest, err := pkg.LoadPackageJSON(manifestPath); err == nil {
		log.Info("Patched package.json",
			zap.String("name", manifest.Name),
			zap.String("registry", manifest.PublishConfig["registry"]))
	}

	tsconfigPath := filepath.Join(opts.Dir, pkg.TSConfigFileName)
	if err := pkg.PatchTSConfig(tsconfigPath); err != nil {
		return fmt.Errorf("patch %s: %w", pkg.TSConfigFileName, err)
	}
	log.Info("Patched tsconfig.json", zap.Int("overrides", len(pkg.CompilerOptionOverrides)))

	return nil
}

func identify(p *pkg.Prompter, owner, repo string) (pkg.Publisher, error) {
	var err error
	if owner == "" {
		if owner, err = p.Ask("What is your github username? "); err != nil {
			return pkg.Publisher{}, err
		}
	}
	if repo == "" {
		if repo, err = p.Ask("What is the repository name? "); err != nil {
			return pkg.Publisher{}, err
		}
	}
	return pkg.Publisher{Owner: owner, Repo: repo}, nil
}

// reportInstall logs what the package manager resolved. Gaps are warnings
// only; the install itself already succeeded.
func reportInstall(log *zap.Logger, dir string, specs []pkg.DependencySpec) {
	lock, err := pkg.LoadPackageLock(filepath.Join(dir, pkg.PackageLockFileName))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Debug("No package-lock.json to report from")
	case err != nil:
		log.Warn("Could not read package-lock.json", zap.Error(err))
	default:
		for _, spec := range specs {
			if version, ok := lock.InstalledVersion(spec.Name); ok {
				log.Debug("Installed", zap.String("package", spec.Name), zap.String("version", version))
			} else {
				log.Warn("Dependency missing from package-lock.json", zap.String("package", spec.Name))
			}
		}
	}

	if !slices.ContainsFunc(specs, func(s pkg.DependencySpec) bool { return s.Name == "rollup" }) {
		return
	}
	if bin, err := pkg.FindBin(dir, "rollup", "rollup"); err != nil {
		log.Warn("rollup binary not available; npm run rollup will fail until it is installed", zap.Error(err))
	} else {
		log.Debug("rollup binary", zap.String("path", bin))
	}
}
