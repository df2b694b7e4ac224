package telegram

import (
	"fmt"
	"log"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Client implements the chat.Client boundary on the Telegram Bot API.
type Client struct {
	BotAPI *tgbotapi.BotAPI

	mu sync.Mutex
	// reacted tracks emitted reactions per (room, event, symbol) so a
	// duplicate reaction is a success, not a second message.
	reacted map[string]bool
}

// NewClient Constructor.
func NewClient(bot *tgbotapi.BotAPI) *Client {
	return &Client{
		BotAPI:  bot,
		reacted: make(map[string]bool),
	}
}

func parseChatID(roomID string) (int64, error) {
	chatID, err := strconv.ParseInt(roomID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram room id %q: %w", roomID, err)
	}
	return chatID, nil
}

func (c *Client) Notify(roomID, text string) error {
	chatID, err := parseChatID(roomID)
	if err != nil {
		return err
	}
	_, err = c.BotAPI.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// React posts the symbol as a follow-up message. Telegram has no per-message
// reaction in this API surface, so the symbol lands in the room instead;
// repeating the same reaction on the same message is a no-op success.
func (c *Client) React(roomID, eventID, symbol string) error {
	key := roomID + ":" + eventID + ":" + symbol
	c.mu.Lock()
	if c.reacted[key] {
		c.mu.Unlock()
		return nil
	}
	c.reacted[key] = true
	c.mu.Unlock()

	chatID, err := parseChatID(roomID)
	if err != nil {
		return err
	}
	_, err = c.BotAPI.Send(tgbotapi.NewMessage(chatID, symbol))
	return err
}

func (c *Client) UploadFile(roomID, filename, mimeType string, data []byte) error {
	chatID, err := parseChatID(roomID)
	if err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	_, err = c.BotAPI.Send(doc)
	return err
}

func (c *Client) RoomName(roomID string) (string, error) {
	chatID, err := parseChatID(roomID)
	if err != nil {
		return "", err
	}
	info, err := c.BotAPI.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

// PowerLevel maps Telegram chat member status onto the power-level scale the
// config threshold compares against: owners and administrators get 100,
// everyone else 0.
func (c *Client) PowerLevel(roomID, senderRef string) (int, error) {
	chatID, err := parseChatID(roomID)
	if err != nil {
		return 0, err
	}
	userID, err := strconv.ParseInt(senderRef, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram user id %q: %w", senderRef, err)
	}

	member, err := c.BotAPI.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
			UserID:     userID,
		},
	})
	if err != nil {
		log.Printf("ERROR: Failed to get chat member %d in %d: %v", userID, chatID, err)
		return 0, err
	}
	if member.IsCreator() || member.IsAdministrator() {
		return 100, nil
	}
	return 0, nil
}
