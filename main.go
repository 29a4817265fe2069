package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FrenchMajesty/turbo-exec/clients/chat"
	"github.com/FrenchMajesty/turbo-exec/config"
	"github.com/FrenchMajesty/turbo-exec/rate_limit"
	"github.com/FrenchMajesty/turbo-exec/rate_limit/backends/memory"
	"github.com/FrenchMajesty/turbo-exec/turbo_exec"
	"github.com/FrenchMajesty/turbo-exec/utils/logger"
	"github.com/FrenchMajesty/turbo-exec/utils/token_counter"
	"github.com/prometheus/client_golang/prometheus"
)

const demoPrompt = "In one sentence, why should retries be bounded?"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Callbacks are delivered here, the way a UI thread would receive them.
	loop := turbo_exec.NewLoop(log)
	defer loop.Close()

	if err := runHello(ctx, loop, log); err != nil {
		log.Error("hello execution failed", "error", err)
		os.Exit(1)
	}

	if cfg.OpenAIAPIKey == "" {
		log.Info("OPENAI_API_KEY not set, skipping chat completion")
		return
	}

	if err := runChat(ctx, cfg, loop, log); err != nil {
		log.Error("chat execution failed", "error", err)
		os.Exit(1)
	}
}

// runHello executes a trivial work function inline.
func runHello(ctx context.Context, loop *turbo_exec.Loop, log logger.Logger) error {
	executor, err := turbo_exec.New[string]().
		RetryOnError(1).
		OnResult(func(s string) { fmt.Println(s) }).
		OnError(func(err error) { log.Warn("hello attempt failed", "error", err) }).
		WithLogger(log).
		Build()
	if err != nil {
		return err
	}

	value, ok, err := executor.Execute(loop.Context(ctx), func(context.Context) (string, error) {
		return "Hello", nil
	}).Get(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no value after %d retries: %w", executor.RetriedCount(), executor.LastError())
	}

	log.Debug("hello execution finished", "value", value)
	return nil
}

// runChat sends one prompt on the background path with the configured
// retry budget and per-attempt timeout.
func runChat(ctx context.Context, cfg config.Config, loop *turbo_exec.Loop, log logger.Logger) error {
	openaiClient := chat.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.Model)

	var counter token_counter.TokenCounterInterface
	if tc, err := token_counter.NewTokenCounter(); err != nil {
		log.Warn("token counting unavailable", "error", err)
	} else {
		counter = tc
		log.Info("sending prompt", "model", openaiClient.Model(), "prompt_tokens", tc.CountPromptTokens(demoPrompt))
	}

	// Every attempt, retries included, draws from the per-minute budget.
	budget := memory.NewBackend(rate_limit.OpenAIRateLimit)
	defer budget.Close()
	client := chat.NewLimitedClient(openaiClient, budget, counter, openaiClient.Model())

	registry := prometheus.NewRegistry()
	metrics, err := turbo_exec.NewMetrics(registry)
	if err != nil {
		return err
	}

	events := make(chan *turbo_exec.Event, 64)
	go func() {
		for event := range events {
			log.Debug("execution event", "type", string(event.Type), "attempt", event.Attempt)
		}
	}()
	defer close(events)

	// The retry budget governs transient failures; anything else stops the run.
	var executor *turbo_exec.Executor[string]
	builder := turbo_exec.New[string]().
		RetryOnError(cfg.Retries).
		OnError(func(err error) {
			retryable := chat.IsRetryable(err)
			log.Warn("chat attempt failed", "error", err, "retryable", retryable)
			if !retryable {
				executor.Cancel()
			}
		}).
		OnResult(func(answer string) { fmt.Println(answer) }).
		WithLogger(log).
		WithMetrics(metrics).
		WithEventChan(events)

	if cfg.Timeout > 0 {
		builder.Timeout(cfg.Timeout, func() {
			log.Warn("chat attempt timed out", "timeout", cfg.Timeout.String())
		})
	}

	if cfg.Workers > 0 {
		pool := turbo_exec.NewWorkerPool(cfg.Workers, cfg.Workers, log)
		defer pool.Stop()
		builder.WithWorkerPool(pool)
	}

	executor, err = builder.Build()
	if err != nil {
		return err
	}

	started := time.Now()
	future := executor.ExecuteOnBackground(loop.Context(ctx), func(ctx context.Context) (string, error) {
		return client.Complete(ctx, demoPrompt)
	})

	outcome, err := future.Wait(ctx)
	if err != nil {
		executor.Cancel()
		<-future.Done()
		return err
	}

	log.Info("chat execution finished",
		"state", outcome.State.String(),
		"attempts", outcome.Attempts,
		"retried", executor.RetriedCount(),
		"elapsed", time.Since(started).String(),
	)

	if !outcome.Succeeded() {
		return fmt.Errorf("chat %s: %w", outcome.State, outcome.Err)
	}
	return nil
}
