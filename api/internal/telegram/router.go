// Package telegram is a chat front end for the fertilizer advisor.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"kujang-advisor/api/internal/advisor"
	"kujang-advisor/api/internal/advisor/types"
)

const (
	maxMessageLen = 3900

	helpText = "Kirim data lahan Anda untuk menghitung kebutuhan pupuk.\n\n" +
		"Format: /hitung <tanaman> <luas_ha> <target_ton>\n" +
		"Contoh: /hitung padi 2 6\n\n" +
		"Anda juga bisa langsung mengetik: padi 2 6"
	startText = "Selamat datang di Kalkulator Pupuk Kujang! 🌾\n\n" + helpText
)

// Bot is the part of *tgbotapi.BotAPI the router needs.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

type Calculator interface {
	Calculate(ctx context.Context, req types.CalculationRequest) (types.RecommendationResult, error)
}

type Router struct {
	Bot  Bot
	Calc Calculator
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil || upd.Message.Text == "" {
		return
	}
	cid := upd.Message.Chat.ID

	if upd.Message.IsCommand() {
		r.HandleCommand(ctx, upd)
		return
	}
	r.calculate(ctx, cid, upd.UpdateID, upd.Message.Text)
}

func (r *Router) HandleCommand(ctx context.Context, upd tgbotapi.Update) {
	cid := upd.Message.Chat.ID
	switch upd.Message.Command() {
	case "start":
		r.send(cid, startText)
	case "bantuan", "help":
		r.send(cid, helpText)
	case "hitung":
		r.calculate(ctx, cid, upd.UpdateID, upd.Message.CommandArguments())
	default:
		r.send(cid, "Perintah tidak dikenal.\n\n"+helpText)
	}
}

func (r *Router) calculate(ctx context.Context, chatID int64, updateID int, text string) {
	req, err := ParseArgs(text)
	if err != nil {
		r.send(chatID, "Format data input tidak valid.\n\n"+helpText)
		return
	}

	ctx = advisor.WithRequestID(ctx, fmt.Sprintf("tg-%d-%d", chatID, updateID))
	r.send(chatID, "⏳ Sedang menghitung, mohon tunggu...")

	res, err := r.Calc.Calculate(ctx, req)
	if err != nil {
		zap.L().Warn("telegram calculation failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		r.send(chatID, ErrorText(err))
		return
	}
	r.send(chatID, FormatResult(req, res))
}

func (r *Router) send(chatID int64, text string) {
	if len([]rune(text)) > maxMessageLen {
		text = string([]rune(text)[:maxMessageLen]) + "…"
	}
	if _, err := r.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		zap.L().Warn("telegram send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
