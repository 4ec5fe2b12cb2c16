package engine

import (
	"context"
	"fmt"
	"sync"

	"job-alert-bot/internal/api/providers"
	"job-alert-bot/internal/models"

	"go.uber.org/zap"
)

type searchTask struct {
	tag     string
	keyword string
	gw      providers.Gateway
}

type searchOutcome struct {
	searchTask
	listings []models.Listing
	err      error
}

// fanOut runs one search per keyword and enabled provider concurrently and
// waits for every call to settle. Outcomes keep task order, so merging is
// deterministic.
func (e *Engine) fanOut(ctx context.Context, chatID int64, prefs models.Preferences) []searchOutcome {
	tasks := e.plan(chatID, prefs)
	outcomes := make([]searchOutcome, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task searchTask) {
			defer wg.Done()
			outcomes[i] = e.search(ctx, task, prefs.Location)
		}(i, task)
	}
	wg.Wait()

	return outcomes
}

func (e *Engine) plan(chatID int64, prefs models.Preferences) []searchTask {
	var gateways []searchTask
	for _, tag := range prefs.Sources {
		gw, ok := e.providers.Get(tag)
		if !ok {
			e.logger.Debug("provider not available, skipping",
				zap.Int64("user_id", chatID),
				zap.String("provider", tag),
			)
			continue
		}
		gateways = append(gateways, searchTask{tag: tag, gw: gw})
	}

	var tasks []searchTask
	for _, kw := range prefs.SearchTerms(e.cfg.MaxKeywords) {
		for _, g := range gateways {
			tasks = append(tasks, searchTask{tag: g.tag, keyword: kw, gw: g.gw})
		}
	}
	return tasks
}

func (e *Engine) search(ctx context.Context, task searchTask, location string) (out searchOutcome) {
	out.searchTask = task

	defer func() {
		if r := recover(); r != nil {
			out.listings = nil
			out.err = fmt.Errorf("provider panic: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.ProviderTimeout)
	defer cancel()

	out.listings, out.err = task.gw.Search(ctx, task.keyword, location)
	return out
}
