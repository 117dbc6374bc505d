package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is overridable at build time via -ldflags "-X main.version=...".
var version = "dev"

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "envit5d",
		Short:         "English-Vietnamese translation server over the VietAI envit5 ONNX export",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(buildServeCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the envit5d version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("envit5d", version)
		},
	})
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "envit5d:", err)
		os.Exit(1)
	}
}
