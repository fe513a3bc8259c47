package cmd

import (
	"github.com/spf13/cobra"
)

// projectsCmd represents the project related commands
var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"project", "prj"},
	Short:   "Commands to manage projects",
	Long:    `Commands to list the remote projects under the current scope.`,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}
