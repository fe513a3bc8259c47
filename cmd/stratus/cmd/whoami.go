package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// whoamiCmd shows the authenticated user
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated user",
	Run: func(cmd *cobra.Command, args []string) {
		client := newAPIClient()
		user, err := client.GetUser(context.Background())
		if err != nil {
			wrapFatalln("resolve user", err)
			return
		}
		infoLogger.Println(user.Username)
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
