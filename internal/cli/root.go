// Package cli implements the routeclaw command-line interface.
package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/RouteClaw/RouteClaw/internal/cli.version=1.2.3"
	version = "0.4.0"
	logo    = "\n" +
		"  ____             _        ____ _\n" +
		" |  _ \\ ___  _   _| |_ ___ / ___| | __ ___      __\n" +
		" | |_) / _ \\| | | | __/ _ \\ |   | |/ _` \\ \\ /\\ / /\n" +
		" |  _ < (_) | |_| | ||  __/ |___| | (_| |\\ V  V /\n" +
		" |_| \\_\\___/ \\__,_|\\__\\___|\\____|_|\\__,_| \\_/\\_/\n"
)

var rootCmd = &cobra.Command{
	Use:   "routeclaw",
	Short: "RouteClaw - Persona-Routing Chat Gateway",
	Long:  color.CyanString(logo) + "\nRoutes chat messages to specialized agent personas behind an OpenAI-compatible API.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(personasCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(gatewayCmd)
}

func printHeader(title string) {
	fmt.Println(color.CyanString(logo))
	if title != "" {
		fmt.Println(title)
		fmt.Println("─────────────────────")
	}
}
