package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/stratus-cloud/stratus/pkg/stream"
)

// logsCmd streams the event feed of one deployment
var logsCmd = &cobra.Command{
	Use:   "logs DEPLOYMENT",
	Short: "Print the build and runtime logs of a deployment",
	Long: `Print the event feed of a deployment, oldest first.

Transient feed failures are retried transparently: partial output is erased
and replayed, so an interactive terminal only ever shows a consistent log.`,
	Example: `% stratus logs dpl_4Xf2Kq
% stratus logs dpl_4Xf2Kq --follow -n 100`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client := newAPIClient()

		err := stream.Consume(ctx, client, args[0],
			stream.WithFollow(stratusFlags.logs.follow),
			stream.WithLimit(stratusFlags.logs.limit),
			stream.WithLogger(cliLogger()),
		)
		if err != nil {
			wrapFatalln("stream deployment logs", err)
			return
		}
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
	addFollowFlag(logsCmd)
	addLimitFlag(logsCmd)
}
