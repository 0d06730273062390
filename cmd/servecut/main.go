package main

import "github.com/servecut/servecut/internal/cli"

func main() {
	cli.Execute()
}
