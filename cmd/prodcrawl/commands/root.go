// Package commands implements the CLI commands for prodcrawl.
package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "prodcrawl",
	Short: "Focused crawler that discovers product pages on e-commerce sites",
	Long: `Prodcrawl walks an e-commerce site from one or more seed URLs,
follows in-domain links, and emits the URLs it classifies as product
pages to a CSV stream.

Examples:
  # Crawl a single store
  prodcrawl crawl -u "https://shop.example.com/"

  # Two seeds, shallow crawl, ten concurrent fetchers
  prodcrawl crawl -u "https://a.example" -u "https://b.example" \
      --max-depth 2 -c 10

  # Override classifier weights and pattern catalogs
  prodcrawl crawl -u "https://shop.example.com/" \
      --weights weights.yaml --patterns patterns.yaml`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.prodcrawl.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().Bool("json-logs", false, "emit logs as JSON")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("json_logs", rootCmd.PersistentFlags().Lookup("json-logs"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".prodcrawl")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("PRODCRAWL")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
