package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"mailtriage/config"
	"mailtriage/internal/eventbus"
	"mailtriage/internal/registry"
	"mailtriage/internal/service"
	"mailtriage/pkg/logger"
)

// 演示批次：供外部调用方（此处是本进程）通过摄入边界送入的原始邮件
var demoEmails = []struct {
	id  string
	raw string
}{
	{
		id: "email_001.txt",
		raw: `Subject: Please cancel order LC123456
Email: customer1@example.com
Name: Zhang San

Hello, I need to cancel order LC123456 as soon as possible.
The products 08-50-0113, 20000pcs are no longer needed.`,
	},
	{
		id: "email_002.txt",
		raw: `Subject: Price inquiry for connectors
Email: customer2@example.com
Company: Tech Solutions Inc

Hi, please check price for 08-50-0113, 5000pcs and 22-01-1042.
What would be the quote for these quantities?`,
	},
	{
		id: "email_003.txt",
		raw: `Subject: Change shipping address for my order
Email: customer3@example.com
Country: Spain

I need to modify address for order LC345678.
New address: Calle Nueva 12, Barcelona 08001, Spain.`,
	},
	{
		id: "email_004.txt",
		raw: `Subject: Where is my shipment?
Email: customer2@example.com

Could you track order LC789012 for me? I need the shipping status.`,
	},
}

func main() {
	// 1. Load config
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.NewLogger(cfg.Log.Development)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zlog.Sync()

	// 2. Seed the registry
	seed := registry.DefaultSeed()
	if cfg.Seed.Path != "" {
		seed, err = registry.LoadSeed(cfg.Seed.Path)
		if err != nil {
			zlog.Fatal("Seed load failed", zap.Error(err))
		}
	}
	store := registry.NewStore(seed, registry.WithLogger(zlog))

	// 3. Event bus with zap mirror
	bus := eventbus.New(
		eventbus.WithMaxLogs(cfg.Engine.MaxLogs),
		eventbus.WithLogger(zlog),
	)

	// 4. Engine with the built-in responder standing in for the external
	//    reasoning stage
	engine := service.NewEngine(store, bus, service.StaticResponder{}, cfg.Engine, zlog)

	items := make([]service.IngestItem, 0, len(demoEmails))
	now := time.Now()
	for _, e := range demoEmails {
		items = append(items, service.IngestItem{ID: e.id, Raw: e.raw, Fallback: now})
	}

	results := engine.ProcessBatch(context.Background(), items, func(msg string) {
		fmt.Println("  ..", msg)
	})

	for _, r := range results {
		fmt.Printf("\n=== %s ===\n", r.EmailID)
		fmt.Printf("category: %s | intent: %s | confidence: %.2f\n", r.Category, r.Intent, r.Confidence)
		for _, ic := range r.Interceptions {
			if ic.Succeeded {
				fmt.Printf("intercepted %s (%s)\n", ic.OrderID, ic.Outcome.Reason)
			} else {
				fmt.Printf("interception of %s failed: %s\n", ic.OrderID, ic.FailureReason)
			}
		}
		fmt.Println(r.Response)
	}

	fmt.Println("\n--- transcript ---")
	fmt.Println(bus.HistoryMarkdown())
}
