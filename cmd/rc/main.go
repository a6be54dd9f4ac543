package main

import (
	"os"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
