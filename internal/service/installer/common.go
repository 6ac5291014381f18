package installer

import (
	"context"
	"os"

	"github.com/oshokin/elixir-ls-installer/internal/executor"
)

const (
	// DefaultFileMode marks created directories and launcher scripts as
	// executable for all users.
	DefaultFileMode os.FileMode = 0o755

	// releaseTask is the mix task packaging a standalone ElixirLS release.
	releaseTask = "elixir_ls.release2"
)

// productionEnvironment returns the extra environment entries selecting the
// production build profile for the build tool.
func productionEnvironment() []string {
	return []string{"MIX_ENV=prod"}
}

// commandContext returns a context with the configured command timeout if set,
// otherwise a cancellable child context without a deadline.
func (i *runner) commandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if i.cfg.CommandTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, i.cfg.CommandTimeout)
}

// runCommand executes one external command under the command timeout.
func (i *runner) runCommand(ctx context.Context, command executor.Command) error {
	cmdCtx, cancel := i.commandContext(ctx)
	defer cancel()

	return i.run.Run(cmdCtx, command)
}

// outputCommand captures one external command's output under the command timeout.
func (i *runner) outputCommand(ctx context.Context, command executor.Command) ([]byte, error) {
	cmdCtx, cancel := i.commandContext(ctx)
	defer cancel()

	return i.run.Output(cmdCtx, command)
}
