package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stratus-cloud/stratus/pkg/errors"
	"github.com/stratus-cloud/stratus/pkg/linker"
	"github.com/stratus-cloud/stratus/pkg/linker/status"
	"github.com/stratus-cloud/stratus/pkg/model"
)

// linkCmd links the enclosing Git repository to remote projects
var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link this repository to your projects",
	Long: `Link the enclosing Git repository to one or more remote projects.

The link is recorded in ` + model.MetaDirName + `/` + model.ManifestName + ` at the repository root. Nested
directories may be linked to different projects; commands run from a
subdirectory resolve to the most specific linked project.`,
	Example: `% stratus link
% stratus link --yes --overwrite`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client := newAPIClient()
		cwd, err := os.Getwd()
		if err != nil {
			wrapFatalln("determine working directory", err)
			return
		}

		resolver := linker.NewResolver(
			linker.WithPrompter(newTerminalPrompter()),
			linker.WithLogger(cliLogger()),
			linker.WithScopeResolver(resolveScope(client)),
		)
		link, err := resolver.EnsureRepoLink(ctx, client, cwd, linker.EnsureOptions{
			Yes:       stratusFlags.link.yes,
			Overwrite: stratusFlags.link.overwrite,
		})
		if err != nil {
			if errors.Is(err, status.ErrNotLinked) {
				infoLogger.Println("canceled, repository not linked")
				return
			}
			wrapFatalln("link repository", err)
			return
		}
		infoLogger.Printf("linked %d project(s) to %s", len(link.RepoConfig.Projects), link.RootPath)
	},
}

// resolveScope picks the org to link under: the --scope team when given,
// the personal scope otherwise.
func resolveScope(client teamLister) func(context.Context) (model.Org, error) {
	return func(ctx context.Context) (model.Org, error) {
		teams, err := client.GetTeams(ctx)
		if err != nil {
			return model.Org{}, err
		}
		if stratusFlags.api.scope == "" {
			if len(teams) == 0 {
				return model.Org{}, fmt.Errorf("no organization scope available")
			}
			return teams[0], nil
		}
		for _, team := range teams {
			if team.ID == stratusFlags.api.scope || team.Slug == stratusFlags.api.scope {
				return team, nil
			}
		}
		return model.Org{}, fmt.Errorf("no team matches scope %q", stratusFlags.api.scope)
	}
}

type teamLister interface {
	GetTeams(ctx context.Context) ([]model.Org, error)
}

func init() {
	rootCmd.AddCommand(linkCmd)
	addYesFlag(linkCmd)
	addOverwriteFlag(linkCmd)
}
