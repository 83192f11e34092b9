// Package telegram announces generated menus in a Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"menu-planner/internal/planner"
	"menu-planner/internal/shopping"
)

// maxMessageLength is the Telegram limit for one text message.
const maxMessageLength = 4096

// Notifier pushes menus to a single chat.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewNotifier authenticates against the Telegram Bot API.
func NewNotifier(token string, chatID int64, logger *zap.Logger) (*Notifier, error) {
	return NewNotifierWithEndpoint(token, tgbotapi.APIEndpoint, chatID, logger)
}

// NewNotifierWithEndpoint talks to a custom Bot API endpoint, such as a
// self-hosted server. endpoint follows the tgbotapi.APIEndpoint format.
func NewNotifierWithEndpoint(token, endpoint string, chatID int64, logger *zap.Logger) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: 30 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("Authorized on Telegram", zap.String("account", api.Self.UserName))

	return &Notifier{api: api, chatID: chatID, logger: logger}, nil
}

// Notify sends both menus, then the shopping list of the realistic menu.
func (n *Notifier) Notify(ctx context.Context, weekOf time.Time, realistic, alternative planner.Result) error {
	messages := []string{
		formatMenuMarkdown("📅 *Menu of the week*", weekOf, realistic),
		formatMenuMarkdown("🔁 *Alternative menu*", weekOf, alternative),
		formatShoppingMarkdown(realistic.Shopping),
	}

	for _, text := range messages {
		for _, part := range splitMessage(text, maxMessageLength) {
			if err := ctx.Err(); err != nil {
				return err
			}
			msg := tgbotapi.NewMessage(n.chatID, part)
			msg.ParseMode = tgbotapi.ModeMarkdown
			if _, err := n.api.Send(msg); err != nil {
				return fmt.Errorf("failed to send telegram message: %w", err)
			}
		}
	}

	n.logger.Info("Menu announced on Telegram", zap.Int64("chat_id", n.chatID))
	return nil
}

func formatMenuMarkdown(title string, weekOf time.Time, res planner.Result) string {
	var pb strings.Builder
	pb.WriteString(fmt.Sprintf("%s (week of %s)\n\n", title, weekOf.Format("Mon 02/01")))

	totalPrep := 0
	for _, m := range res.Meals {
		pb.WriteString(fmt.Sprintf("*%s*: %s", m.At.Format("Mon 02/01 15:04"), escape(m.Name)))
		if m.PrepMinutes != nil {
			pb.WriteString(fmt.Sprintf(" (%d mins)", *m.PrepMinutes))
			if !m.Leftover {
				totalPrep += *m.PrepMinutes
			}
		}
		pb.WriteString("\n")

		details := []string{escape(m.Participants)}
		if m.Availability != "" {
			details = append(details, escape(m.Availability))
		}
		details = append(details, escapeAll(m.Remarks)...)
		pb.WriteString(fmt.Sprintf("_%s_\n\n", strings.Join(details, " · ")))
	}

	pb.WriteString(fmt.Sprintf("⏱ *Total Prep:* %d mins", totalPrep))
	if res.Stats.Unresolved > 0 {
		pb.WriteString(fmt.Sprintf("\n⚠️ %d slot(s) without a dish", res.Stats.Unresolved))
	}
	return pb.String()
}

func formatShoppingMarkdown(lines []shopping.Line) string {
	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n\n")

	missing := shopping.Missing(lines)
	if len(missing) == 0 {
		sb.WriteString("_Nothing to buy_\n")
	}
	for _, l := range missing {
		sb.WriteString(fmt.Sprintf("• %s: %s %s\n", escape(l.Name), formatAmount(l.ToBuy), escape(l.Unit)))
	}
	return sb.String()
}

func formatAmount(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func escapeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, escape(s))
	}
	return out
}

// splitMessage cuts text on line boundaries into parts of at most limit bytes.
// A single line longer than limit is cut as is.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var (
		parts   []string
		current strings.Builder
	)
	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			flush()
			cut := limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			parts = append(parts, line[:cut])
			line = line[cut:]
		}
		if current.Len()+len(line) > limit {
			flush()
		}
		current.WriteString(line)
	}
	flush()
	return parts
}
