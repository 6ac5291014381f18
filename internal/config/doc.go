// Package config defines the installation settings used by the CLI and
// provides helpers to load, validate and save them in YAML format.
//
// Every field has a built-in default, so the zero-argument invocation needs
// no file at all: the defaults describe the stock ElixirLS install on a
// dnf-based host (checkout under the user's home, release under
// /usr/local/lib, alias under /usr/local/bin, PATH block in ~/.bashrc).
package config
