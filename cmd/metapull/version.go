package main

import (
	"runtime"

	"github.com/spf13/cobra"
)

// NewVersionCmd reports the binary version and the toolchain it was built
// with.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the metapull version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("metapull %s\n", version)
			cmd.Printf("go: %s\n", runtime.Version())
			cmd.Printf("platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
