package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"jobscout/internal/app"
	"jobscout/internal/config"
	"jobscout/internal/coordinator"
)

func splitFocus(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// One-shot scraping run for cron jobs and local testing. The HTTP service
// is not involved; the coordinator talks to the database directly.
func main() {
	focus := flag.String("focus", "all", "comma-separated focus areas: all, internship, new-grad, h1b, remote")
	priorityOnly := flag.Bool("priority-only", false, "restrict the company phase to high-priority targets")
	timeout := flag.Duration("timeout", 30*time.Minute, "overall run timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	c, err := app.NewContainer(cfg)
	if err != nil {
		log.Fatalf("failed to init container: %v", err)
	}
	defer func() {
		_ = c.Close()
	}()

	migCtx, migCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := c.Migrate(migCtx); err != nil {
		migCancel()
		log.Fatalf("migration failed: %v", err)
	}
	migCancel()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	params := coordinator.RunParams{
		FocusAreas:   splitFocus(*focus),
		PriorityOnly: *priorityOnly,
	}
	session, err := c.Coordinator.Run(ctx, params)
	if err != nil {
		log.Printf("run interrupted err=%v", err)
	}

	log.Printf("session %s finished focus=%v found=%d saved=%d success=%v",
		session.ID, session.FocusAreas, session.TotalFound, session.TotalSaved, session.Success)
	for _, r := range session.Sources {
		status := "ok"
		if !r.Success {
			status = "failed: " + r.Error
		}
		log.Printf("  %-28s %-16s found=%-4d saved=%-4d in %s (%s)",
			r.SourceName, r.Category, r.JobsFound, r.JobsSaved, r.Duration.Round(time.Millisecond), status)
	}
}
