package config

// Bot configures Telegram. Run notifications need Token and ChatID; the
// command bot of the serve command needs Token and AdminID.
type Bot struct {
	Token   string `env:"BOT_TOKEN"    json:"-"`
	ChatID  int64  `env:"BOT_CHAT_ID"`
	AdminID int64  `env:"BOT_ADMIN_ID"`
}

func (b Bot) Enabled() bool {
	return b.Token != "" && b.ChatID != 0
}

func (b Bot) CommandsEnabled() bool {
	return b.Token != "" && b.AdminID != 0
}
