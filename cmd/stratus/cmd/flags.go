package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/stratus-cloud/stratus/pkg/api"
	"github.com/stratus-cloud/stratus/pkg/zlog"
	"go.uber.org/zap"
)

// flagsT gathers all flag values, grouped by concern
type flagsT struct {
	root struct {
		logLevel string
		cpuProf  bool
	}
	api struct {
		endpoint string
		token    string
		scope    string
	}
	link struct {
		yes       bool
		overwrite bool
	}
	logs struct {
		follow bool
		limit  int
	}
	list struct {
		project string
	}
}

var stratusFlags = flagsT{}

func addLogLevelFlag(cmd *cobra.Command) string {
	const logLevel = "loglevel"
	cmd.PersistentFlags().StringVar(&stratusFlags.root.logLevel, logLevel,
		zlog.LogLevelInfo, "The logging level (debug, info, none)")
	return logLevel
}

func addCPUProfFlag(cmd *cobra.Command) string {
	const cpuprof = "cpuprof"
	cmd.PersistentFlags().BoolVar(&stratusFlags.root.cpuProf, cpuprof,
		false, "Toggle runtime profiling")
	return cpuprof
}

func addAPIFlag(cmd *cobra.Command) string {
	const apiEndpoint = "api"
	cmd.PersistentFlags().StringVar(&stratusFlags.api.endpoint, apiEndpoint,
		"", "The platform API endpoint to talk to")
	return apiEndpoint
}

func addTokenFlag(cmd *cobra.Command) string {
	const token = "token"
	cmd.PersistentFlags().StringVar(&stratusFlags.api.token, token,
		"", "The access token used to authenticate calls")
	return token
}

func addScopeFlag(cmd *cobra.Command) string {
	const scope = "scope"
	cmd.PersistentFlags().StringVar(&stratusFlags.api.scope, scope,
		"", "The team scope to operate under (default: personal scope)")
	return scope
}

func addYesFlag(cmd *cobra.Command) string {
	const yes = "yes"
	cmd.Flags().BoolVarP(&stratusFlags.link.yes, yes, "y",
		false, "Skip questions and use the default answers")
	return yes
}

func addOverwriteFlag(cmd *cobra.Command) string {
	const overwrite = "overwrite"
	cmd.Flags().BoolVar(&stratusFlags.link.overwrite, overwrite,
		false, "Re-link even when this repository is already linked")
	return overwrite
}

func addFollowFlag(cmd *cobra.Command) string {
	const follow = "follow"
	cmd.Flags().BoolVarP(&stratusFlags.logs.follow, follow, "f",
		false, "Keep the feed open and print events as they arrive")
	return follow
}

func addLimitFlag(cmd *cobra.Command) string {
	const limit = "limit"
	cmd.Flags().IntVarP(&stratusFlags.logs.limit, limit, "n",
		0, "Maximum number of events to print (0 means unbounded)")
	return limit
}

func addProjectFlag(cmd *cobra.Command) string {
	const project = "project"
	cmd.Flags().StringVar(&stratusFlags.list.project, project,
		"", "Restrict the listing to one project id")
	return project
}

// cliLogger builds the logger configured for this invocation
func cliLogger() *zap.Logger {
	logger, err := zlog.GetLogger(stratusFlags.root.logLevel)
	if err != nil {
		wrapFatalln("set log level", err)
		return zap.NewNop()
	}
	return logger
}

// newAPIClient assembles the platform client from flags and config
func newAPIClient() *api.Client {
	if stratusFlags.api.token == "" {
		stratusFlags.api.token = os.Getenv("STRATUS_TOKEN")
	}
	if stratusFlags.api.token == "" {
		wrapFatalln("no access token: pass --token, set STRATUS_TOKEN or run 'stratus config create'", nil)
	}
	return api.New(
		api.WithBaseURL(stratusFlags.api.endpoint),
		api.WithToken(stratusFlags.api.token),
		api.WithTeam(stratusFlags.api.scope),
		api.WithLogger(cliLogger()),
	)
}
