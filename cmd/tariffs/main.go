package main

import "github.com/dvvinfo/btlz-wb-test/internal/cli"

func main() {
	cli.Execute()
}
