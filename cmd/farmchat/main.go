package main

import "github.com/farmease/farmease-ai/internal/cli"

func main() {
	cli.Run()
}
