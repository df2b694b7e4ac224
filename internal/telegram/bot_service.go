// Package telegram handles the integration with the Telegram Bot API. It
// receives updates, converts them into inbound messages and feeds them to
// the command router, one in-order worker per room.
package telegram

import (
	"log"
	"strconv"
	"sync"

	"meetgogo/backend/internal/meetbot"
	"meetgogo/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// roomBuffer is the per-room queue depth. A full queue blocks that room's
// intake only; other rooms keep flowing.
const roomBuffer = 64

// BotService is responsible for receiving Telegram updates and routing them
// to the meeting pipeline.
type BotService struct {
	BotAPI *tgbotapi.BotAPI
	Router *meetbot.Router

	mu    sync.Mutex
	rooms map[string]chan models.InboundMessage
}

// NewBotService creates a new BotService instance. The router is attached
// afterwards via SetRouter, since it needs this service's chat client.
func NewBotService(token string) (*BotService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("✅ Authorized on account %s", bot.Self.UserName)

	return &BotService{
		BotAPI: bot,
		rooms:  make(map[string]chan models.InboundMessage),
	}, nil
}

func (s *BotService) SetRouter(router *meetbot.Router) {
	s.Router = router
}

// roomQueue returns the room's serialized worker channel, starting the
// worker on first use. Messages within a room are processed in arrival
// order; rooms are independent concurrency units.
func (s *BotService) roomQueue(roomID string) chan models.InboundMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.rooms[roomID]
	if !ok {
		ch = make(chan models.InboundMessage, roomBuffer)
		s.rooms[roomID] = ch
		go func() {
			for msg := range ch {
				s.Router.HandleMessage(msg)
			}
		}()
	}
	return ch
}

// senderName prefers the public @username, falling back to the numeric id.
func senderName(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	if user.UserName != "" {
		return "@" + user.UserName
	}
	return strconv.FormatInt(user.ID, 10)
}

// Run is the main loop for receiving Telegram updates.
func (s *BotService) Run() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.BotAPI.GetUpdatesChan(u)

	for update := range updates {
		msg := update.Message
		if msg == nil || msg.Text == "" || msg.From == nil {
			continue
		}

		inbound := models.InboundMessage{
			RoomID:    strconv.FormatInt(msg.Chat.ID, 10),
			Sender:    senderName(msg.From),
			SenderRef: strconv.FormatInt(msg.From.ID, 10),
			EventID:   strconv.Itoa(msg.MessageID),
			Timestamp: int64(msg.Date) * 1000,
			Body:      msg.Text,
		}
		s.roomQueue(inbound.RoomID) <- inbound
	}
}
