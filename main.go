package main

import (
	"fmt"
	"os"

	"github.com/babarot/rmt/internal/cli"
)

const appName = "rmt"

// These variables are set in build step
var (
	Version   = "unset"
	Revision  = "unset"
	BuildDate = "unset"
)

func main() {
	if err := cli.Run(cli.Version{
		AppName:   appName,
		Version:   Version,
		Revision:  Revision,
		BuildDate: BuildDate,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}
