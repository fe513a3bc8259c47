package cmd

import (
	"os"
	"os/user"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/spf13/cobra"
)

var configGen = &cobra.Command{
	Use:   "create",
	Short: "Create a config",
	Long:  "Create a config to use for stratus. Config file will be placed in $HOME/.stratus/stratus.yaml",
	Run: func(cmd *cobra.Command, args []string) {
		usr, err := user.Current()
		if usr == nil || err != nil {
			wrapFatalln("could not get home directory for user", err)
			return
		}
		config := CLIConfig{
			Token: stratusFlags.api.token,
			API:   stratusFlags.api.endpoint,
			Scope: stratusFlags.api.scope,
		}
		o, e := yaml.Marshal(config)
		if e != nil {
			wrapFatalln("serialize config to yaml", e)
			return
		}
		_ = os.Mkdir(filepath.Join(usr.HomeDir, ".stratus"), 0777)
		err = os.WriteFile(filepath.Join(usr.HomeDir, ".stratus", "stratus.yaml"), o, 0600)
		if err != nil {
			wrapFatalln("write config file", err)
			return
		}
		infoLogger.Println("wrote", filepath.Join(usr.HomeDir, ".stratus", "stratus.yaml"))
	},
}

func init() {
	configCmd.AddCommand(configGen)
}
