package bot

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/gradebook/internal/app"
	"github.com/shrimpsizemoose/gradebook/internal/models"
)

// Sender is the part of the telegram API the bot replies through.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TokenIssuer hands out and revokes HTTP API tokens.
type TokenIssuer interface {
	FetchOrCreateToken(ctx context.Context, user string) (*models.TokenInfo, bool, error)
	RevokeToken(ctx context.Context, user string) error
}

type Bot struct {
	service *app.Service
	tokens  TokenIssuer
	api     *tgbotapi.BotAPI
	sender  Sender
	admins  map[int64]bool
}

// New connects to telegram. tokens may be nil when API auth is disabled.
func New(service *app.Service, tokens *app.TokenManager) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(service.Config.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	var issuer TokenIssuer
	if tokens != nil {
		issuer = tokens
	}

	b := newBot(service, issuer, api)
	b.api = api
	return b, nil
}

func newBot(service *app.Service, tokens TokenIssuer, sender Sender) *Bot {
	admins := make(map[int64]bool)
	for _, id := range service.Config.Bot.AdminIDs {
		admins[id] = true
	}

	return &Bot{
		service: service,
		tokens:  tokens,
		sender:  sender,
		admins:  admins,
	}
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case update := <-updates:
			if update.Message == nil {
				continue
			}

			go b.handleMessage(update.Message)

		case <-sigChan:
			logger.Info.Println("Shutting down bot...")
			b.api.StopReceivingUpdates()
			return nil
		}
	}
}
