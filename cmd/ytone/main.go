package main

import "github.com/forPelevin/ytone/internal/cli"

func main() {
	cli.Main()
}
