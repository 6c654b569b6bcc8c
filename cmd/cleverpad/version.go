package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cleverpad"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cleverpad",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cleverpad version %s\n", cleverpad.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
