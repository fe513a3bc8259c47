package cmd

import (
	"context"
	"time"

	units "github.com/docker/go-units"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"github.com/stratus-cloud/stratus/pkg/api"
	"github.com/stratus-cloud/stratus/pkg/model"
)

// projectsListCmd lists projects under the current scope
var projectsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	Long:    `List the remote projects under the current scope.`,
	Example: `% stratus projects ls --scope acme`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client := newAPIClient()

		table := uitable.New()
		table.AddRow("NAME", "ID", "FRAMEWORK", "UPDATED")
		now := time.Now()
		err := client.ListProjectsApply(ctx, api.ProjectsQuery{}, func(p model.Project) error {
			updated := "-"
			if !p.UpdatedAt.IsZero() {
				updated = units.HumanDuration(now.Sub(p.UpdatedAt)) + " ago"
			}
			table.AddRow(p.Name, color.HiBlackString(p.ID), p.Framework, updated)
			return nil
		})
		if err != nil {
			wrapFatalln("list projects", err)
			return
		}
		infoLogger.Println(table)
	},
}

func init() {
	projectsCmd.AddCommand(projectsListCmd)
}
