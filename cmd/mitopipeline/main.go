package main

import (
	"fmt"
	"os"

	"github.com/me/mitopipeline/internal/cli"
	"github.com/me/mitopipeline/internal/ui"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorMsg("%v", err))
		os.Exit(1)
	}
}
