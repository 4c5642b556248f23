package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"storefront/internal/app/policies"
	"storefront/internal/domain/order"
)

var ErrChannelRequired = errors.New("telegram: channel id is required")

// Sender is the part of the bot API the gateway needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Gateway posts orders to the operators' channel as a photo with caption and
// pings the referrer, if any, with a direct message.
type Gateway struct {
	bot       Sender
	channelID int64
	logger    *slog.Logger
}

// NewBot authenticates against the Bot API. An empty endpoint uses the public
// one. Every Bot API call, including the initial getMe, is bounded by timeout.
func NewBot(token, endpoint string, timeout time.Duration) (*tgbotapi.BotAPI, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("telegram: connect bot: %w", err)
	}
	return bot, nil
}

func NewGateway(bot Sender, channelID int64, logger *slog.Logger) (*Gateway, error) {
	if channelID == 0 {
		return nil, ErrChannelRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{bot: bot, channelID: channelID, logger: logger}, nil
}

func (g *Gateway) Notify(ctx context.Context, proof policies.Proof, o order.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := proof.Name
	if name == "" {
		name = "payment"
	}
	photo := tgbotapi.NewPhoto(g.channelID, tgbotapi.FileReader{Name: name, Reader: proof.Body})
	photo.Caption = ChannelCaption(o)
	photo.ParseMode = tgbotapi.ModeHTML
	if _, err := g.bot.Send(photo); err != nil {
		return fmt.Errorf("%w: %w", policies.ErrNotificationFailed, err)
	}

	if o.Referrer.TelegramID != 0 {
		msg := tgbotapi.NewMessage(o.Referrer.TelegramID, ReferrerMessage(o))
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := g.bot.Send(msg); err != nil {
			g.logger.WarnContext(ctx, "referrer notification failed", "order_id", o.ID, "referrer", o.Referrer.TelegramID, "error", err)
		}
	}
	return nil
}

// ChannelCaption renders the operators' channel post.
func ChannelCaption(o order.Order) string {
	var b strings.Builder
	b.WriteString("🆕 НОВЫЙ ЗАКАЗ\n\n")
	fmt.Fprintf(&b, "👤 Клиент: %s\n", html.EscapeString(o.ClientName))
	if o.ClientUsername != "" {
		fmt.Fprintf(&b, "@%s\n", html.EscapeString(o.ClientUsername))
	} else {
		fmt.Fprintf(&b, "ID: %s\n", strconv.FormatInt(o.ClientID, 10))
	}
	if o.Referrer.Name != "" {
		fmt.Fprintf(&b, "👥 Привел: %s\n", html.EscapeString(o.Referrer.Name))
	}
	fmt.Fprintf(&b, "\n💃 Модель: %s\n", html.EscapeString(o.ProfileName))
	fmt.Fprintf(&b, "🔧 Услуги: %s\n", html.EscapeString(strings.Join(o.Services, ", ")))
	fmt.Fprintf(&b, "⏰ Длительность: %s\n", html.EscapeString(string(o.Duration)))
	fmt.Fprintf(&b, "📅 Дата: %s\n", html.EscapeString(o.BookingDate))
	fmt.Fprintf(&b, "💰 Сумма: %s ₽\n\n", formatRubles(o.TotalPrice))
	b.WriteString("📸 Скриншот оплаты прикреплен")
	return b.String()
}

// ReferrerMessage renders the direct message sent to the referrer.
func ReferrerMessage(o order.Order) string {
	var b strings.Builder
	b.WriteString("🎉 <b>Ваш клиент оплатил заказ!</b>\n\n")
	fmt.Fprintf(&b, "👤 Клиент: %s\n", html.EscapeString(o.ClientName))
	fmt.Fprintf(&b, "💃 Модель: %s\n", html.EscapeString(o.ProfileName))
	fmt.Fprintf(&b, "💰 Сумма: %s ₽\n\n", formatRubles(o.TotalPrice))
	b.WriteString("Заказ отправлен на проверку администратору.")
	return b.String()
}

func formatRubles(amount int64) string {
	return strings.ReplaceAll(humanize.Comma(amount), ",", " ")
}

var _ policies.NotificationGateway = (*Gateway)(nil)
