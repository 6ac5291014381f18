package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	shellwords "github.com/mattn/go-shellwords"
)

// Command describes a single external process invocation.
type Command struct {
	// Name is the executable name or path.
	Name string
	// Args are the arguments passed to the executable.
	Args []string
	// Dir is the working directory; empty inherits the current one.
	Dir string
	// Env holds extra KEY=VALUE entries appended to the parent environment.
	Env []string
}

// String renders the command the way a shell user would type it.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner abstracts external command execution.
type Runner interface {
	// Run executes the command and waits for it, streaming its output.
	Run(ctx context.Context, cmd Command) error
	// Output executes the command and returns its captured standard output.
	Output(ctx context.Context, cmd Command) ([]byte, error)
	// LookPath resolves an executable name on the search path.
	LookPath(name string) (string, error)
}

// errEmptyCommandLine is returned when a configured command line has no words.
var errEmptyCommandLine = errors.New("empty command line")

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct {
	// Stdout receives the child's standard output during Run.
	Stdout io.Writer
	// Stderr receives the child's standard error during Run.
	Stderr io.Writer
}

// NewExecRunner returns a runner streaming child output to this process's streams.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run executes the command and waits for completion.
// A non-zero exit is returned as an error naming the full command line.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	execCmd := r.build(ctx, cmd)
	execCmd.Stdout = r.Stdout
	execCmd.Stderr = r.Stderr

	if err := execCmd.Run(); err != nil {
		return fmt.Errorf("command %q: %w", cmd.String(), err)
	}

	return nil
}

// Output executes the command and returns its standard output.
// On failure the child's standard error, when captured, is folded into the
// returned error to keep diagnostics in one line.
func (r *ExecRunner) Output(ctx context.Context, cmd Command) ([]byte, error) {
	out, err := r.build(ctx, cmd).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return out, fmt.Errorf("command %q: %s: %w",
				cmd.String(), strings.TrimSpace(string(exitErr.Stderr)), err)
		}

		return out, fmt.Errorf("command %q: %w", cmd.String(), err)
	}

	return out, nil
}

// LookPath resolves an executable name on the search path.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// build assembles the exec.Cmd shared by Run and Output.
func (r *ExecRunner) build(ctx context.Context, cmd Command) *exec.Cmd {
	execCmd := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	execCmd.Dir = cmd.Dir

	if len(cmd.Env) > 0 {
		execCmd.Env = append(os.Environ(), cmd.Env...)
	}

	return execCmd
}

// ParseLine splits a configured command line into words with shell-style
// quoting rules, so settings like `install_command: "dnf install -y"` can
// carry quoted arguments.
func ParseLine(line string) ([]string, error) {
	words, err := shellwords.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("parse command line %q: %w", line, err)
	}

	if len(words) == 0 {
		return nil, fmt.Errorf("%q: %w", line, errEmptyCommandLine)
	}

	return words, nil
}
