package main

import "github.com/rustyeddy/bandtrader/internal/cli"

func main() {
	cli.Execute()
}
