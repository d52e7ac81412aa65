package handler

import (
	"fmt"
	"html"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"pricetrack/internal/domain"
	"pricetrack/internal/domain/service/series"
	"pricetrack/pkg/errcodes"
)

func (h *Handler) OnStart(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, startMessage)
}

func (h *Handler) OnLatest(ctx *th.Context, msg telego.Message) error {
	doc, err := h.artifact.Read(ctx)
	if err != nil {
		return h.replyError(ctx, msg.Chat.ID, err)
	}

	report := series.Report{Document: doc}
	report.Summarize(h.primaryID)

	return h.sendHTML(ctx, msg.Chat.ID, formatLatest(report))
}

func (h *Handler) OnSources(ctx *th.Context, msg telego.Message) error {
	doc, err := h.artifact.Read(ctx)
	if err != nil {
		return h.replyError(ctx, msg.Chat.ID, err)
	}

	report := series.Report{Document: doc}
	report.Summarize(h.primaryID)

	return h.sendHTML(ctx, msg.Chat.ID, formatSources(report))
}

func (h *Handler) OnScan(ctx *th.Context, msg telego.Message) error {
	if h.scanner == nil {
		return h.sendHTML(ctx, msg.Chat.ID, "Scanner is disabled.")
	}

	if err := h.sendHTML(ctx, msg.Chat.ID, "Scanning marketplaces..."); err != nil {
		return err
	}

	report, err := h.scanner.ScanSources(ctx, commandArgs(msg.Text)...)
	if err != nil {
		return h.replyError(ctx, msg.Chat.ID, err)
	}

	return h.sendHTML(ctx, msg.Chat.ID, fmt.Sprintf(
		"Scan finished: %d sources read, %d failed, %d fresh listings, %d stored.",
		report.Scanned, report.Failed, report.Fresh, report.Stored,
	))
}

func (h *Handler) replyError(ctx *th.Context, chatID int64, err error) error {
	text := "Something went wrong, see the logs."
	switch code, _ := domain.GetCode(err); code {
	case errcodes.ArtifactNotFound:
		text = "No series yet. Run <code>pricetrack build</code> first."
	case errcodes.ValidationError:
		text = escape(err.Error())
	}

	if sendErr := h.sendHTML(ctx, chatID, text); sendErr != nil {
		return sendErr
	}

	return err
}

func (h *Handler) sendHTML(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, tu.Message(tu.ID(chatID), text).WithParseMode(telego.ModeHTML))
	if err != nil {
		return fmt.Errorf("bot.SendMessage: %w", err)
	}

	return nil
}

func escape(s string) string {
	return html.EscapeString(s)
}
