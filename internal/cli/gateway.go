package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RouteClaw/RouteClaw/internal/gateway"
)

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start the OpenAI-compatible chat gateway",
	Run:   runGateway,
}

func runGateway(cmd *cobra.Command, args []string) {
	printHeader("🌐 RouteClaw Gateway")

	p, err := buildPipeline()
	if err != nil {
		fmt.Printf("Startup error: %v\n", err)
		os.Exit(1)
	}
	defer p.Close()

	srv := gateway.NewServer(gateway.Options{
		Host:        p.cfg.Gateway.Host,
		Port:        p.cfg.Gateway.Port,
		AuthToken:   p.cfg.Gateway.AuthToken,
		Registry:    p.registry,
		Pipeline:    p.orchestrator,
		Transcripts: p.transcripts,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving %d personas on http://%s:%d/v1\n",
		len(p.registry.List()), p.cfg.Gateway.Host, p.cfg.Gateway.Port)

	if err := srv.Run(ctx); err != nil {
		fmt.Printf("Gateway error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Gateway stopped.")
}
