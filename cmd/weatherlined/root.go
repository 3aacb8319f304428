package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calloway/weatherline/config"
	"github.com/calloway/weatherline/internal/util"
)

var (
	cfgFile string
	verbose int

	// cfg is populated by PersistentPreRunE and shared with all subcommands.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "weatherlined",
	Short: "Weather hotline webhook daemon",
	Long: `weatherlined serves the Twilio voice webhooks behind the weather
hotline: it validates webhook signatures, looks up the caller's city
through OpenWeatherMap, and speaks back the current temperature.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file (.yaml, .yml, or .json)")
	rootCmd.PersistentFlags().IntVarP(&verbose, "verbose", "v", config.DefaultVerbose, "log verbosity level between 1 (error) and 5 (trace)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Secrets may live in a local .env during development; real
		// environment variables always win.
		if err := config.LoadDotenv(""); err != nil {
			return err
		}

		cfg = config.NewDefaultConfig()
		if cfgFile != "" {
			fileCfg, err := config.NewConfigFromFile(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg = fileCfg
		}

		// --verbose flag takes precedence over the config file.
		if cmd.Flags().Changed("verbose") {
			cfg.LogLvl = config.VerboseToLevel(verbose)
		}
		cfg.ApplyEnv()

		util.InitializeLogger(cfg.LogLvl)
		return nil
	}

	rootCmd.AddCommand(serveCmd)
}

// Execute is the entry point called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
