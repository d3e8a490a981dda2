package main

import "github.com/aquariux/wt-automation/pkg/cli"

func main() {
	cli.Execute()
}
