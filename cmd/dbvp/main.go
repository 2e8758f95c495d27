package main

import "github.com/giotroni/DB-VP/internal/cli"

func main() {
	cli.Execute()
}
