package cmd

import (
	"context"
	"time"

	units "github.com/docker/go-units"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"github.com/stratus-cloud/stratus/pkg/model"
)

func stateColor(s model.ReadyState) string {
	switch s {
	case model.StateReady:
		return color.GreenString(string(s))
	case model.StateError:
		return color.RedString(string(s))
	case model.StateCanceled:
		return color.HiBlackString(string(s))
	default:
		return color.YellowString(string(s))
	}
}

// deploymentsListCmd lists deployments under the current scope
var deploymentsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List deployments",
	Long:    `List the deployments under the current scope, most recent first.`,
	Example: `% stratus deployments ls --project prj_9aF3k`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client := newAPIClient()

		table := uitable.New()
		table.AddRow("AGE", "STATE", "NAME", "URL")
		now := time.Now()
		err := client.ListDeploymentsApply(ctx, stratusFlags.list.project, func(d model.Deployment) error {
			age := "-"
			if !d.CreatedAt.IsZero() {
				age = units.HumanDuration(now.Sub(d.CreatedAt))
			}
			table.AddRow(age, stateColor(d.ReadyState), d.Name, d.URL)
			return nil
		})
		if err != nil {
			wrapFatalln("list deployments", err)
			return
		}
		infoLogger.Println(table)
	},
}

func init() {
	deploymentsCmd.AddCommand(deploymentsListCmd)
	addProjectFlag(deploymentsListCmd)
}
