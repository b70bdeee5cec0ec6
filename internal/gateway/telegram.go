package gateway

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Assistant is the session-facing handler a gateway forwards messages to.
type Assistant interface {
	Handle(ctx context.Context, sessionID, text string) (string, error)
}

type TelegramGateway struct {
	Bot    *tgbotapi.BotAPI
	Assist Assistant
}

func NewTelegramGateway(token string, assist Assistant) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	return &TelegramGateway{
		Bot:    bot,
		Assist: assist,
	}, nil
}

func (tg *TelegramGateway) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		log.Printf("[%s] %s", update.Message.From.UserName, update.Message.Text)

		ctx := context.Background()
		sessionID := fmt.Sprintf("%d", update.Message.Chat.ID)
		response, err := tg.Assist.Handle(ctx, sessionID, update.Message.Text)
		if err != nil {
			log.Printf("Error handling message: %v", err)
			response = "I'm having trouble with that right now..."
		}

		msg := tgbotapi.NewMessage(update.Message.Chat.ID, response)
		tg.Bot.Send(msg)
	}
	return nil
}

func (tg *TelegramGateway) Send(sessionID string, text string) error {
	id := 0
	fmt.Sscanf(sessionID, "%d", &id)
	if id == 0 {
		return fmt.Errorf("invalid session ID: %s", sessionID)
	}

	msg := tgbotapi.NewMessage(int64(id), text)
	msg.ParseMode = "Markdown"
	_, err := tg.Bot.Send(msg)
	return err
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}
