package main

import "github.com/oshokin/elixir-ls-installer/cmd/elixir-ls-installer/cmd"

func main() {
	cmd.Execute()
}
