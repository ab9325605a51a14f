package pkg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

// Runner runs a command line through the host shell.
type Runner interface {
	Run(ctx context.Context, command string) error
}

// CommandError reports a command that ran and exited non-zero.
type CommandError struct {
	Command  string
	ExitCode int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%q exited with status %d", e.Command, e.ExitCode)
}

// ShellRunner runs commands with sh -c, or cmd /C on Windows, wired to the
// caller's terminal.
type ShellRunner struct {
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func NewShellRunner(dir string) *ShellRunner {
	return &ShellRunner{Dir: dir, Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *ShellRunner) Run(ctx context.Context, command string) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}
	cmd.Dir = r.Dir
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &CommandError{Command: command, ExitCode: exitErr.ExitCode()}
		}
		return fmt.Errorf("run %q: %w", command, err)
	}
	return nil
}

// InstallCommand builds "<manager> install <specs...> --save-dev".
func InstallCommand(manager string, specs []DependencySpec) string {
	args := make([]string, 0, len(specs)+3)
	args = append(args, manager, "install")
	for _, spec := range specs {
		args = append(args, shellQuote(spec.String()))
	}
	args = append(args, "--save-dev")
	return strings.Join(args, " ")
}

// InstallDevDependencies blocks until the package manager exits. Nothing is
// undone on failure.
func InstallDevDependencies(ctx context.Context, log *zap.Logger, runner Runner, manager string, specs []DependencySpec) error {
	if len(specs) == 0 {
		return errors.New("no dev dependencies to install")
	}
	command := InstallCommand(manager, specs)
	log.Info("Installing dev dependencies", zap.String("command", command), zap.Int("count", len(specs)))
	if err := runner.Run(ctx, command); err != nil {
		return fmt.Errorf("install dev dependencies: %w", err)
	}
	return nil
}

// shellQuote leaves plain package arguments alone and quotes anything the
// shell would interpret, such as ">=1.0.0 <2".
func shellQuote(arg string) string {
	safe := true
	for _, c := range arg {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.ContainsRune("@/._-:+=", c):
		default:
			safe = false
		}
	}
	if safe {
		return arg
	}
	// ParseDependencySpec rejects quotes, so plain wrapping is enough
	if runtime.GOOS == "windows" {
		return `"` + arg + `"`
	}
	return "'" + arg + "'"
}
