package main

import (
	"fmt"
	"os"

	"github.com/lao-tseu-is-alive/go-meshfield/internal/cli"
	"github.com/lao-tseu-is-alive/go-meshfield/internal/display"
)

func main() {
	if err := cli.NewRootCmd(display.Run).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
