package handler

import (
	th "github.com/mymmrac/telego/telegohandler"

	"pricetrack/internal/transport/bot/middleware"
)

func (h *Handler) RegisterRoutes(bh *th.BotHandler, adminID int64) {
	adminGroup := bh.Group(th.AnyMessage())
	adminGroup.Use(middleware.AdminOnly(adminID))

	adminGroup.HandleMessage(h.OnStart, th.CommandEqual("start"))
	adminGroup.HandleMessage(h.OnLatest, th.CommandEqual("latest"))
	adminGroup.HandleMessage(h.OnSources, th.CommandEqual("sources"))
	adminGroup.HandleMessage(h.OnScan, th.CommandEqual("scan"))
}
