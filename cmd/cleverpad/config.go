package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/cleverpad/internal/platform"
)

var configLocal bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the defaults",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path := cfgFile
		switch {
		case path != "":
		case configLocal:
			path = platform.ConfigFileName
		default:
			path = platform.DefaultConfigPath()
		}
		if err := platform.InitConfig(path, platform.DefaultConfig()); err != nil {
			fatal("failed to initialize config", err)
		}
		success("Wrote %s.", path)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := platform.WriteConfig(os.Stdout, cfg); err != nil {
			fatal("failed to print config", err)
		}
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file in use",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path := platform.ResolveConfigPath(cfgFile)
		if _, err := os.Stat(path); err != nil {
			fmt.Printf("%s %s\n", path, faint("(not created)"))
			return
		}
		fmt.Println(path)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configPathCmd)
	configInitCmd.Flags().BoolVar(&configLocal, "local", false, "write "+platform.ConfigFileName+" in the current directory")
}
