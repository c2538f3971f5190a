/*
Package main is the entry point of aictl, the operator CLI for the GEMA AI
orchestration layer.

Usage:

	aictl [command]

Available Commands:

	check  Validate configuration, providers, prompts and fallbacks
	ops    List supported operations
	run    Run one operation and print the result
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/noah-isme/gema-ai/internal/cli"
)

var version = "dev"

func main() {
	env := cli.DefaultEnv()

	rootCmd := &cobra.Command{
		Use:           "aictl",
		Short:         "Operate the GEMA AI orchestration layer from the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(cli.NewCheckCmd(env))
	rootCmd.AddCommand(cli.NewOpsCmd())
	rootCmd.AddCommand(cli.NewRunCmd(env))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
