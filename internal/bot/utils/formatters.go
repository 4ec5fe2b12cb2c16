package utils

import (
	"fmt"
	"html"
	"strings"
	"time"

	"job-alert-bot/internal/models"
)

const (
	maxTitleLen = 200
	maxFieldLen = 120
)

// FormatListing renders a listing as a Telegram HTML card.
func FormatListing(l models.Listing) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("💼 <b>%s</b>\n", EscapeHTML(TruncateString(l.Title, maxTitleLen))))
	sb.WriteString(fmt.Sprintf("🏢 %s\n", EscapeHTML(TruncateString(orDefault(l.Company, "Unknown"), maxFieldLen))))
	sb.WriteString(fmt.Sprintf("📍 %s", EscapeHTML(TruncateString(orDefault(l.Location, "Unspecified"), maxFieldLen))))

	// Posted date, when the provider sends one
	if l.PostedAt != "" {
		sb.WriteString(fmt.Sprintf("\n🕒 <i>%s</i>", EscapeHTML(l.PostedAt)))
	}

	sb.WriteString(fmt.Sprintf("\n🔗 <a href=\"%s\">Apply / View</a>", EscapeHTML(l.URL)))
	sb.WriteString(fmt.Sprintf("\n🏷️ <i>Source: %s</i>", EscapeHTML(l.Source)))

	return sb.String()
}

func FormatHelpMessage() string {
	return `✅ <b>Job Alert Bot</b>

<b>Commands</b>
• /set keyword=python,java,react location=Bangalore sources=remotive,adzuna interval=30
• /status
• /now
• /ping
• /sources

<b>Tips</b>
• Multiple tech: keyword=python,java,react,node,flutter,devops
• All tech (broad): keyword=all
• Quote values with spaces: location="New Delhi"
`
}

func FormatSourcesMessage(sources []string) string {
	return fmt.Sprintf("Available sources: <b>%s</b>", EscapeHTML(strings.Join(sources, ", ")))
}

// FormatStatusMessage renders a subscriber's settings. loc is the zone the
// last run is shown in.
func FormatStatusMessage(prefs *models.Preferences, delivered int, loc *time.Location) string {
	lastRun := "Never"
	if prefs.LastRun > 0 {
		lastRun = time.Unix(prefs.LastRun, 0).In(loc).Format("2006-01-02 15:04:05")
	}

	keywords := prefs.KeywordsCSV()
	if prefs.Unfiltered() {
		keywords = "all"
	}

	var sb strings.Builder
	sb.WriteString("🧾 <b>Your settings</b>\n")
	sb.WriteString(fmt.Sprintf("• keywords: <code>%s</code>\n", EscapeHTML(keywords)))
	sb.WriteString(fmt.Sprintf("• location: <code>%s</code>\n", EscapeHTML(prefs.Location)))
	sb.WriteString(fmt.Sprintf("• sources: <code>%s</code>\n", EscapeHTML(prefs.SourcesCSV())))
	sb.WriteString(fmt.Sprintf("• interval: <code>%d</code> min\n", prefs.IntervalMin))
	sb.WriteString(fmt.Sprintf("• last run: <code>%s</code>\n", lastRun))
	sb.WriteString(fmt.Sprintf("• jobs sent (30 days): <code>%d</code>", delivered))

	return sb.String()
}

func FormatErrorMessage(err error) string {
	return fmt.Sprintf("❌ Error: %v", err)
}

// EscapeHTML escapes text for Telegram HTML parse mode.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// TruncateString shortens s to at most maxLen runes.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
