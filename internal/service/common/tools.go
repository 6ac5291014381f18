//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/oshokin/elixir-ls-installer/internal/executor"
	"github.com/oshokin/elixir-ls-installer/internal/logger"
)

const (
	// GitExecutable clones the language server sources.
	GitExecutable = "git"

	// BuildToolName is the Elixir build tool driving dependency fetch,
	// compilation and release packaging.
	BuildToolName = "mix"

	// ElixirExecutable reports the installed toolchain version.
	ElixirExecutable = "elixir"

	// LauncherScriptName is the entry point every usable release contains.
	LauncherScriptName = "language_server.sh"

	// DebugAdapterScriptName is the optional debug adapter entry point.
	DebugAdapterScriptName = "debug_adapter.sh"

	// AliasName is the short command symlinked into the system binary directory.
	AliasName = "elixir-ls"

	// DebugAdapterAliasName is the short name for the debug adapter, when present.
	DebugAdapterAliasName = "elixir-ls-debugger"
)

var (
	// ErrToolMissing reports a required tool that does not resolve on the search path.
	ErrToolMissing = errors.New("required tool is not installed")

	errInvalidVersionOutput = errors.New("invalid version output format")
)

// CheckTools verifies each tool resolves on the search path, in order.
// The first missing tool aborts the check; later tools are not inspected.
func CheckTools(ctx context.Context, run executor.Runner, tools []string) error {
	for _, tool := range tools {
		path, err := run.LookPath(tool)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrToolMissing, tool)
		}

		logger.InfoKV(ctx, "Tool found", "tool", tool, "path", path)
	}

	return nil
}

// ParseElixirVersion extracts the toolchain version from `elixir --version`
// output. The relevant line looks like
// "Elixir 1.16.2 (compiled with Erlang/OTP 26)"; earlier lines describe the
// Erlang runtime and are skipped.
func ParseElixirVersion(output string) (*goversion.Version, error) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "Elixir ") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			break
		}

		parsed, err := goversion.NewVersion(fields[1])
		if err != nil {
			return nil, fmt.Errorf("parse version %q: %w", fields[1], err)
		}

		return parsed, nil
	}

	return nil, errInvalidVersionOutput
}
