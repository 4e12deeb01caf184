package main

import (
	"fmt"
	"os"

	"github.com/damionirving/gpumon-aws/cmd/gpumon/command"
)

func main() {
	app := command.App()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "gpumon: %v\n", err)
		os.Exit(1)
	}
}
