package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/kubev2v/logql-transpiler/cmd"
	"github.com/kubev2v/logql-transpiler/internal/config"
)

func main() {
	cfg := config.NewConfigurationWithOptionsAndDefaults()

	if err := cmd.NewRootCommand(cfg).Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
