//go:build !js && !wasip1 && !cloudflare

// Native deckbind CLI and HTTP server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joeblew999/deckbind/handler"
)

var (
	cfgFile   string
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "deckbind",
	Short: "deckbind - bind slide decks to templates",
	Long: `deckbind turns generated slide decks (outline markdown or deck JSON)
into rendered slides by binding every page to a layout template.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "deckbind version %s\n", handler.Version)
		if commit != "unknown" {
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
		}
		if buildTime != "unknown" {
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", buildTime)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when empty)")
	rootCmd.AddCommand(serveCmd, renderCmd, parseCmd, templatesCmd, versionCmd)
}
