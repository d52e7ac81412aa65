package notifier

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"pricetrack/internal/domain/service/series"
	"pricetrack/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals // skip

type messageSender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// TelegramBot posts run summaries to one chat.
type TelegramBot struct {
	sender messageSender
	chatID int64
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return NewTelegramBotWithSender(bot, chatID), nil
}

func NewTelegramBotWithSender(sender messageSender, chatID int64) *TelegramBot {
	return &TelegramBot{
		sender: sender,
		chatID: chatID,
	}
}

// NotifyBuild sends the summary of a finished build.
func (b *TelegramBot) NotifyBuild(ctx context.Context, report series.Report) error {
	return b.send(ctx, FormatBuild(report))
}

func (b *TelegramBot) send(ctx context.Context, text string) error {
	msg := tu.Message(tu.ID(b.chatID), text).WithParseMode(telego.ModeHTML)

	if _, err := b.sender.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	logger(ctx).Debug("notification sent", "chat-id", b.chatID)

	return nil
}

// FormatBuild renders a build report as Telegram HTML.
func FormatBuild(r series.Report) string {
	var sb strings.Builder

	name := html.EscapeString(r.Document.Product.Name)

	if r.AllTimeLow && r.PrimaryLatest != nil {
		fmt.Fprintf(&sb, "📉 <b>New all-time low for %s</b>\n\n", name)
	} else {
		fmt.Fprintf(&sb, "📈 <b>%s price series updated</b>\n\n", name)
	}

	if p := r.PrimaryLatest; p != nil {
		fmt.Fprintf(&sb, "💰 <b>Current:</b> %s %s", p.Display.Amount.StringFixed(2), p.Display.Currency)

		if p.Display.FX != nil {
			fmt.Fprintf(&sb, " (%s %s)", p.Price.Amount.StringFixed(2), p.Price.Currency)
		}

		fmt.Fprintf(&sb, "\n🔗 <a href=\"%s\">%s</a>\n\n", html.EscapeString(p.URL), html.EscapeString(p.SourceID))
	}

	for _, s := range r.Summaries {
		fmt.Fprintf(&sb, "• %s: %d pts, min %s, max %s, latest %s (%s)\n",
			html.EscapeString(s.SourceID),
			s.Points,
			s.Min.StringFixed(2),
			s.Max.StringFixed(2),
			s.Latest.StringFixed(2),
			s.LatestDate,
		)
	}

	fmt.Fprintf(&sb, "\n%d points, %d skipped", len(r.Document.Series), r.Skipped)

	if r.RunID != "" {
		fmt.Fprintf(&sb, "\n<code>%s</code>", html.EscapeString(r.RunID))
	}

	return sb.String()
}
