package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/stratus-cloud/stratus/pkg/stream"
)

// deploymentsWatchCmd follows a deployment until it completes
var deploymentsWatchCmd = &cobra.Command{
	Use:   "watch DEPLOYMENT",
	Short: "Follow a deployment until it completes",
	Long: `Stream the build log of an in-flight deployment and return once it is done.

Completion is detected from the feed itself and from a periodic poll of the
deployment state, whichever signals first.`,
	Example: `% stratus deployments watch dpl_4Xf2Kq`,
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client := newAPIClient()

		err := stream.Consume(ctx, client, args[0],
			stream.WithMode(stream.ModeDeploy),
			stream.WithFollow(true),
			stream.WithLogger(cliLogger()),
			stream.WithOnFirstOpen(func() {
				infoLogger.Println("building...")
			}),
		)
		if err != nil {
			wrapFatalln("watch deployment", err)
			return
		}
		infoLogger.Println("deployment is ready")
	},
}

func init() {
	deploymentsCmd.AddCommand(deploymentsWatchCmd)
}
