// Package executor wraps external command execution behind a small Runner
// interface so services can substitute mocks in tests.
//
// ExecRunner is the production implementation over os/exec: Run streams the
// child's output to the installer's own streams (package managers and build
// tools print meaningful progress), Output captures stdout for parsing.
// ParseLine splits configured command lines with shell-style quoting.
package executor
