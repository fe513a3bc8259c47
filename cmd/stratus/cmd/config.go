package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CLIConfig describes the CLI configuration.
type CLIConfig struct {
	// bug in viper? Need to keep names of fields the same as the serialized names..
	Token string `json:"token" yaml:"token"` // Access token for the platform API
	API   string `json:"api" yaml:"api"`     // Platform API endpoint
	Scope string `json:"scope" yaml:"scope"` // Default team scope
}

func newConfig() (*CLIConfig, error) {
	var config CLIConfig
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// setStratusParams fills flags left empty from the persisted configuration
func (c *CLIConfig) setStratusParams(flags *flagsT) {
	if flags.api.token == "" {
		flags.api.token = c.Token
	}
	if flags.api.endpoint == "" {
		flags.api.endpoint = c.API
	}
	if flags.api.scope == "" {
		flags.api.scope = c.Scope
	}
}

// configCmd represents the config related commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Commands to manage the stratus CLI config",
	Long: `Commands to manage the stratus CLI config.

Configuration is the common set of flags needed by most commands that do not
change across runs, analogous to "git config ...".`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
