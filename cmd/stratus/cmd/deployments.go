package cmd

import (
	"github.com/spf13/cobra"
)

// deploymentsCmd represents the deployment related commands
var deploymentsCmd = &cobra.Command{
	Use:     "deployments",
	Aliases: []string{"deployment", "dpl"},
	Short:   "Commands to manage deployments",
	Long:    `Commands to list and watch the deployments of your projects.`,
}

func init() {
	rootCmd.AddCommand(deploymentsCmd)
}
