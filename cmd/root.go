package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sojebsikder/npm-deploy/pkg"
)

var (
	dir            string
	configPath     string
	assumeYes      bool
	owner          string
	repo           string
	verifyRegistry bool
	verbose        bool

	logger *zap.Logger

	// newRunner is replaced in tests so no package manager is spawned.
	newRunner = func(dir string) pkg.Runner { return pkg.NewShellRunner(dir) }
)

var rootCmd = &cobra.Command{
	Use:   "npm-deploy",
	Short: "Prepare a component library for bundling with rollup and publishing to GitHub Packages",
	Long: `npm-deploy is run once in the root of a TypeScript/React component library.

It:
  1. Writes rollup.config.js (asks before overwriting an existing one)
  2. Installs rollup, its plugins and the babel toolchain as dev dependencies
  3. Patches package.json: build/publish scripts, scoped name, GitHub registry,
     dist entry points, private=false
  4. Patches tsconfig.json compilerOptions for declaration output

A failing step stops the run. Files changed by earlier steps are not restored.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		config.Encoding = "console"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runSetup,
}

func init() {
	rootCmd.Flags().StringVarP(&dir, "dir", "C", ".", "Project directory containing package.json and tsconfig.json")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to npm-deploy.yaml (default: <dir>/npm-deploy.yaml)")
	rootCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Overwrite an existing rollup config without asking")
	rootCmd.Flags().StringVar(&owner, "owner", "", "GitHub account that owns the package (prompted when empty)")
	rootCmd.Flags().StringVar(&repo, "repo", "", "Repository name used as the package name (prompted when empty)")
	rootCmd.Flags().BoolVar(&verifyRegistry, "verify-registry", false, "Check every dev dependency against the npm registry before installing")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func runSetup(cmd *cobra.Command, args []string) error {
	projectDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = filepath.Join(projectDir, pkg.ConfigFileName)
	}
	cfg, err := pkg.LoadConfig(cfgPath)
	if err != nil {
		return err
	}
	logger.Debug("Loaded config", zap.String("path", cfgPath), zap.String("packageManager", cfg.PackageManager))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return RunSetup(ctx, SetupOptions{
		Dir:            projectDir,
		Config:         cfg,
		AssumeYes:      assumeYes,
		Owner:          owner,
		Repo:           repo,
		VerifyRegistry: verifyRegistry,
		Runner:         newRunner(projectDir),
		In:             cmd.InOrStdin(),
		Out:            cmd.OutOrStdout(),
		Logger:         logger,
	})
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
