package bot

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API is the narrow slice of the Telegram Bot API the notifier needs.
type API interface {
	// SendMessage sends text to a chat and returns the message identifier.
	SendMessage(chatID int64, text string, silent, html bool) (int, error)
	// EditMessageText replaces the text of an existing message in place.
	EditMessageText(chatID int64, messageID int, text string) error
	// PinMessage pins a message without notifying chat members.
	PinMessage(chatID int64, messageID int) error
	// SendDocument uploads the file at path as a document with a caption.
	SendDocument(chatID int64, path, caption string, silent bool) error
}

// Client implements API on top of the Telegram bot transport.
type Client struct {
	bot *tgbotapi.BotAPI
}

// NewClient authorizes the bot against the Telegram API.
func NewClient(token string) (*Client, error) {
	b, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize telegram bot: %w", err)
	}

	slog.Info("Telegram bot authorized", "username", b.Self.UserName)
	return &Client{bot: b}, nil
}

// SendMessage sends text to a chat and returns the message identifier
func (c *Client) SendMessage(chatID int64, text string, silent, html bool) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableNotification = silent
	if html {
		msg.ParseMode = tgbotapi.ModeHTML
	}

	sent, err := c.bot.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// EditMessageText replaces the text of an existing message in place
func (c *Client) EditMessageText(chatID int64, messageID int, text string) error {
	_, err := c.bot.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
	return err
}

// PinMessage pins a message without notifying chat members
func (c *Client) PinMessage(chatID int64, messageID int) error {
	_, err := c.bot.Request(tgbotapi.PinChatMessageConfig{
		ChatID:              chatID,
		MessageID:           messageID,
		DisableNotification: true,
	})
	return err
}

// SendDocument uploads the file at path as a document with a caption
func (c *Client) SendDocument(chatID int64, path, caption string, silent bool) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	doc.DisableNotification = silent

	_, err := c.bot.Send(doc)
	return err
}

// Discard is an API that drops everything. It stands in for the real client
// when no bot token is configured so the rest of the service keeps working.
type Discard struct{}

func (Discard) SendMessage(int64, string, bool, bool) (int, error) { return 0, nil }

func (Discard) EditMessageText(int64, int, string) error { return nil }

func (Discard) PinMessage(int64, int) error { return nil }

func (Discard) SendDocument(int64, string, string, bool) error { return nil }
