package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"job-alert-bot/internal/models"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

var errUnclosedQuote = errors.New("no closing quotation")

// /set keyword=... location=... sources=... interval=...
//
// Keys that are left out fall back to their defaults.
func HandleSet(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		chatID := c.Chat().ID

		args, err := ParseSetArgs(c.Text())
		if err != nil {
			return c.Send("⚠️ Could not parse settings: " + err.Error() +
				"\nExample: /set keyword=python,java location=\"New Delhi\" interval=30")
		}

		prefs := BuildPreferences(args, ctx.Sources)

		dbCtx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()

		if err := ctx.Store.UpsertPreferences(dbCtx, chatID, prefs); err != nil {
			ctx.Logger.Error("failed to save preferences", zap.Int64("user_id", chatID), zap.Error(err))
			return c.Send("😔 Could not save settings. Please try again later.")
		}

		ctx.Logger.Info("preferences updated",
			zap.Int64("user_id", chatID),
			zap.Strings("keywords", prefs.Keywords),
			zap.String("location", prefs.Location),
			zap.Strings("sources", prefs.Sources),
			zap.Int("interval_min", prefs.IntervalMin),
		)

		return c.Send("✅ Saved! Now run /now", tele.NoPreview)
	}
}

// ParseSetArgs extracts key=value pairs from a /set command. The first word
// is the command itself. Words follow POSIX shell quoting.
// Keys are lower-cased; words without "=" are ignored.
func ParseSetArgs(text string) (map[string]string, error) {
	words, err := shellquote.Split(text)
	if err != nil {
		if errors.Is(err, shellquote.UnterminatedSingleQuoteError) ||
			errors.Is(err, shellquote.UnterminatedDoubleQuoteError) ||
			errors.Is(err, shellquote.UnterminatedEscapeError) {
			return nil, errUnclosedQuote
		}
		return nil, fmt.Errorf("split arguments: %w", err)
	}

	out := make(map[string]string)
	if len(words) < 2 {
		return out, nil
	}
	for _, w := range words[1:] {
		k, v, ok := strings.Cut(w, "=")
		if !ok {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out, nil
}

// BuildPreferences turns /set arguments into preferences, filling defaults
// for missing or invalid values.
func BuildPreferences(args map[string]string, sources Sources) models.Preferences {
	prefs := models.DefaultPreferences()

	keywords := args["keyword"]
	if keywords == "" {
		keywords = args["keywords"]
	}
	if keywords != "" {
		prefs.Keywords = models.ParseKeywords(keywords)
	}

	if loc, ok := args["location"]; ok {
		prefs.Location = loc
	}

	requested := prefs.Sources
	if s := args["sources"]; s != "" {
		requested = models.SplitCSV(s)
	}
	prefs.Sources = sources.NormalizeSources(requested)

	if raw := args["interval"]; raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			prefs.IntervalMin = models.ClampInterval(n)
		}
	}

	return prefs
}
