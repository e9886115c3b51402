package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/opspulse-backend/internal/eval"
	"github.com/angelmondragon/opspulse-backend/pkg/env"
	"github.com/angelmondragon/opspulse-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	casesPath := flag.String("cases", env.Get("EVAL_CASES", "eval/test_cases.jsonl"), "JSONL file of eval cases")
	outDir := flag.String("out", env.Get("EVAL_RESULTS_DIR", "eval/results"), "directory for latest.json and latest.md")
	baseURL := flag.String("base-url", env.Get("EVAL_BASE_URL", "http://127.0.0.1:"+env.Get("EVAL_PORT", "8080")), "running server to evaluate")
	apiKey := flag.String("api-key", env.Get("COPILOT_API_KEY", "dev_local_key"), "x-api-key sent with each question")
	pause := flag.Duration("pause", env.Duration("EVAL_PAUSE", eval.DefaultBackoff), "delay between cases")
	wait := flag.Duration("wait", env.Duration("EVAL_WAIT", 5*time.Second), "how long to wait for the server to answer")
	flag.Parse()

	logg := logger.New(logger.Options{
		ServiceName: "copilot-eval",
		Level:       logger.ParseLevel(env.Get("LOG_LEVEL", "info")),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"base_url": *baseURL, "cases": *casesPath})

	cases, err := eval.LoadCases(*casesPath)
	if err != nil {
		logg.Error(ctx, "eval.load_cases_failed", err)
		os.Exit(1)
	}

	client := eval.NewClient(*baseURL, *apiKey, eval.WithWaitHook(func(d time.Duration) {
		logg.InfoFields(ctx, "eval.rate_limited", map[string]any{"wait_ms": d.Milliseconds()})
	}))
	if err := client.WaitForServer(ctx, *wait); err != nil {
		logg.Error(ctx, "eval.server_unreachable", err)
		os.Exit(1)
	}

	report, err := eval.NewRunner(client, eval.WithPause(*pause), eval.WithLogger(logg)).Run(ctx, cases)
	if err != nil {
		logg.Error(ctx, "eval.run_failed", err)
		os.Exit(1)
	}

	paths, err := eval.WriteReport(*outDir, report)
	if err != nil {
		logg.Error(ctx, "eval.write_failed", err)
		os.Exit(1)
	}
	for _, p := range paths {
		fmt.Println("Wrote:", p)
	}

	if !report.AllPassed() {
		os.Exit(1)
	}
}
