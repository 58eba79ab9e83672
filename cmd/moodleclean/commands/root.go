// Package commands implements the CLI commands for moodleclean.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "moodleclean",
	Short: "Normalize word-processor HTML for Moodle",
	Long: `Moodleclean takes HTML pasted from Word or Google Docs and rewrites
it into the constrained dialect Moodle's content editor accepts:
Office markup stripped, inline styling removed, oversized paragraphs
promoted to real headings, empty placeholder tags pruned.

Examples:
  # Clean a saved paste
  moodleclean clean page.html

  # Clean from stdin to stdout
  pbpaste | moodleclean clean

  # Keep text alignment, write an indented copy
  moodleclean clean --preset strict page.html -o cleaned.html

  # Batch clean with per-file stats
  moodleclean clean --stats-format jsonl *.html`,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.moodleclean.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
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
		viper.SetConfigName(".moodleclean")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("MOODLECLEAN")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
