package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/RouteClaw/RouteClaw/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🏷️ RouteClaw Version")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("📊 RouteClaw Status")
		fmt.Printf("Version: %s\n", version)

		// Check config
		if path, err := config.ConfigPath(); err == nil {
			if _, err := os.Stat(path); err == nil {
				fmt.Println("Config:  ✓ Found (" + path + ")")
			} else {
				fmt.Println("Config:  ✗ Not found (defaults in effect)")
			}
		}

		p, err := buildPipeline()
		if err != nil {
			fmt.Printf("Status:  ✗ Wiring failed: %v\n", err)
			return
		}
		defer p.Close()

		if hasAPIKey(p.cfg) {
			fmt.Println("API Key: ✓ Found")
		} else {
			fmt.Println("API Key: ✗ Not found")
		}

		// Backend reachability
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.backend.Ping(ctx); err != nil {
			fmt.Printf("Backend: ✗ %v\n", err)
		} else {
			fmt.Println("Backend: ✓ Reachable (" + p.backend.BaseURL() + ")")
		}

		// Transcript counters
		if p.transcripts != nil {
			if counters, err := p.transcripts.Count(); err == nil {
				fmt.Printf("Handled: %d messages (%d failed, %d tokens)\n",
					counters.Handled, counters.Failed, counters.TotalTokens)
			}
		}

		fmt.Println("Status:  Ready")
	},
}

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List registered personas",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🎭 RouteClaw Personas")

		p, err := buildPipeline()
		if err != nil {
			fmt.Printf("Startup error: %v\n", err)
			os.Exit(1)
		}
		defer p.Close()

		for _, pers := range p.registry.List() {
			marker := " "
			if pers.ID == p.cfg.Router.DefaultPersona {
				marker = "*"
			}
			fmt.Printf("%s %-22s %s\n", marker, pers.ID, pers.DisplayName)
			fmt.Printf("    tools: %s\n", strings.Join(pers.ToolNames, ", "))
		}
		fmt.Println("\n(* = router default; use model id 'auto' for automatic routing)")
	},
}

func hasAPIKey(cfg *config.Config) bool {
	return cfg.Providers.OpenAI.APIKey != "" ||
		cfg.Providers.OpenRouter.APIKey != "" ||
		cfg.Providers.Local.APIBase != ""
}
