package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RouteClaw/RouteClaw/internal/orchestrator"
	"github.com/RouteClaw/RouteClaw/internal/persona"
)

var chatPersona string

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send one message through the persona pipeline",
	Args:  cobra.MinimumNArgs(1),
	Run:   runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatPersona, "persona", "p", persona.Auto,
		"persona id, or 'auto' to let the router decide")
}

func runChat(cmd *cobra.Command, args []string) {
	p, err := buildPipeline()
	if err != nil {
		fmt.Printf("Startup error: %v\n", err)
		os.Exit(1)
	}
	defer p.Close()

	message := strings.Join(args, " ")
	reply := p.orchestrator.HandleMessage(context.Background(), orchestrator.Request{
		Message:    message,
		Persona:    chatPersona,
		SessionKey: "cli:local",
	})

	fmt.Printf("[%s] %s\n", reply.Persona, reply.Content)
	if reply.Decision.Reasoning != "" {
		fmt.Printf("(route: %s, confidence %.2f)\n", reply.Decision.Reasoning, reply.Decision.Confidence)
	}
}
