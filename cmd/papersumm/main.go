package main

import "github.com/papersumm/papersumm/internal/cli"

func main() {
	cli.Execute()
}
