package main

import "github.com/neox5/obscell/internal/cli"

func main() {
	cli.Execute()
}
