package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sojebsikder/npm-deploy/pkg"
)

type recordingRunner struct {
	commands []string
}

func (r *recordingRunner) Run(ctx context.Context, command string) error {
	r.commands = append(r.commands, command)
	return nil
}

func TestRootCommand(t *testing.T) {
	t.Setenv("NPM_DEPLOY_PACKAGE_MANAGER", "")
	t.Setenv("NPM_DEPLOY_REGISTRY", "")

	projectDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "package.json"), []byte(`{"name": "lib", "scripts": {}}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "tsconfig.json"), []byte(`{"compilerOptions": {}}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, pkg.ConfigFileName), []byte("packageManager: yarn\ndevDependencies: [rollup]\n"), 0644))

	runner := &recordingRunner{}
	origRunner := newRunner
	newRunner = func(string) pkg.Runner { return runner }
	t.Cleanup(func() { newRunner = origRunner })

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader("alice\nmylib\n"))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--dir", projectDir, "--yes"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		dir, assumeYes = ".", false
	})

	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, []string{"yarn install rollup --save-dev"}, runner.commands)
	manifest, err := pkg.LoadPackageJSON(filepath.Join(projectDir, "package.json"))
	require.NoError(t, err)
	assert.Equal(t, "@alice/mylib", manifest.Name)
	assert.False(t, manifest.Private)
	assert.FileExists(t, filepath.Join(projectDir, pkg.RollupConfigFileName))
}

func TestRootCommandRejectsArgs(t *testing.T) {
	rootCmd.SetArgs([]string{"extra"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	assert.Error(t, rootCmd.Execute())
}
