package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configShowSecrets bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long:  "Prints the merged configuration (defaults, config.yaml, environment) in config file format. API keys are redacted unless --show-secrets is set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := *cfg
		if !configShowSecrets {
			c.Perplexity.Key = redact(c.Perplexity.Key)
			c.Brave.Key = redact(c.Brave.Key)
			c.Anthropic.Key = redact(c.Anthropic.Key)
		}

		out, err := yaml.Marshal(&c)
		if err != nil {
			return eris.Wrap(err, "marshal config")
		}
		fmt.Print(string(out))

		return nil
	},
}

func redact(key string) string {
	if key == "" {
		return ""
	}
	return "********"
}

func init() {
	configCmd.Flags().BoolVar(&configShowSecrets, "show-secrets", false, "print API keys unredacted")
	rootCmd.AddCommand(configCmd)
}
