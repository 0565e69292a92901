package cmd

import (
	"github.com/spf13/cobra"
)

var dockerCmd = &cobra.Command{
	Use:   "docker",
	Short: "Docker image commands",
	Long:  "Package, push, run and kill the project's container image.",
}

func init() {
	rootCmd.AddCommand(dockerCmd)
}
