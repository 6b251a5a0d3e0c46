package main

import "github.com/rustyeddy/clo/internal/cli"

func main() {
	cli.Execute()
}
