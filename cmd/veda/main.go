package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rahul/veda/internal/agent"
	"github.com/rahul/veda/internal/brain"
	"github.com/rahul/veda/internal/gateway"
	"github.com/rahul/veda/internal/governance"
	"github.com/rahul/veda/internal/observability"
	"github.com/rahul/veda/internal/store"
	"github.com/rahul/veda/internal/tools"
	"github.com/rahul/veda/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

func main() {
	_ = godotenv.Load()

	observability.PrintBanner()

	// Route all log output through the terminal mutex so concurrent
	// goroutines never interleave partial lines.
	log.SetOutput(observability.NewTermWriter())

	cfg := config.LoadConfig("config.yaml")

	for _, dir := range []string{cfg.App.Workspace, cfg.App.DataDir, cfg.App.LogDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("failed to create directory %s: %v", dir, err)
		}
	}

	st, err := store.New(cfg.Memory.Path)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	logger := observability.NewLogger(cfg.App.LogDir)
	audit := observability.NewAuditLogger(cfg.App.LogDir)

	gov := governance.NewDefaultPolicyEngine()
	// Default safety rules: Block dangerous destructive commands
	_ = gov.DenyArguments(`rm\s+-rf`)
	_ = gov.DenyArguments(`mkfs`)
	_ = gov.DenyArguments(`shutdown`)
	_ = gov.DenyArguments(`reboot`)

	dispatcher := tools.NewDispatcher(cfg.App.Workspace, st, gov, audit)

	responder := buildResponder(cfg)

	coordinator := agent.NewCoordinator(
		brain.NewPlanner(),
		brain.NewRiskEvaluator(),
		brain.NewConfirmationManager(cfg.ConfirmTTL()),
		dispatcher,
		st,
		audit,
		cfg.Memory.TopK,
	)

	chat := &agent.Chat{
		Coordinator: coordinator,
		Responder:   responder,
		History:     st,
		Logger:      logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runtime := agent.NewRuntime(chat, dispatcher, cfg.Runtime.InboxDir, cfg.Runtime.ProcessedDir, cfg.PollInterval())
	runtime.Start("default", false)
	defer runtime.Stop()

	if tgCfg, ok := cfg.GetTelegramConfig(); ok {
		tg, err := gateway.NewTelegramGateway(tgCfg.Token, chat)
		if err != nil {
			log.Fatal(err)
		}
		go func() {
			if err := tg.Start(); err != nil {
				log.Printf("gateway error: %v", err)
				stop()
			}
		}()
		defer tg.Stop()
	} else {
		log.Println("Telegram gateway disabled; running headless with inbox at", cfg.Runtime.InboxDir)
	}

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.Heartbeat()
				logger.LogHeartbeat()
			}
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	// Give a short time for final logs/syncs
	time.Sleep(500 * time.Millisecond)
	log.Println("shutdown complete")
}

// buildResponder wires the chat fallback models from config. A missing
// or failing provider degrades to the router's offline sentinel rather
// than aborting startup.
func buildResponder(cfg *config.Config) brain.Responder {
	router := &brain.Router{}

	if p, ok := cfg.Providers["openai"]; ok && p.Enabled && p.APIKey != "" {
		opts := []openai.Option{
			openai.WithToken(p.APIKey),
			openai.WithModel(p.Model),
		}
		if p.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(p.BaseURL))
		}
		if llm, err := openai.New(opts...); err != nil {
			log.Printf("Warning: failed to initialize openai provider: %v", err)
		} else {
			router.Primary = llms.Model(llm)
			router.PrimaryName = "openai"
			router.PrimaryModel = p.Model
		}
	}

	if p, ok := cfg.Providers["ollama"]; ok && p.Enabled {
		opts := []ollama.Option{ollama.WithModel(p.Model)}
		if p.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(p.BaseURL))
		}
		if llm, err := ollama.New(opts...); err != nil {
			log.Printf("Warning: failed to initialize ollama provider: %v", err)
		} else {
			if router.Primary == nil {
				router.Primary = llms.Model(llm)
				router.PrimaryName = "ollama"
				router.PrimaryModel = p.Model
			} else {
				router.Secondary = llms.Model(llm)
				router.SecondaryName = "ollama"
				router.SecondaryModel = p.Model
			}
		}
	}

	return router
}
