// Package installer performs the full ElixirLS installation sequence.
//
// A run is strictly linear and fail-fast: verify privileges and required
// tools, install the Erlang/Elixir toolchain through the system package
// manager, clone and build the language server from source, package a
// release, wire launcher symlinks and the shell profile, and record an
// install receipt. The first failing step aborts the whole run; partly
// installed state is left in place for inspection, there is no rollback.
package installer
