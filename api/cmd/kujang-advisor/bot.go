package main

import (
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kujang-advisor/api/internal/telegram"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot (long polling)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			return eris.Wrap(err, "telegram: connect")
		}
		bot.Debug = cfg.Telegram.Debug
		zap.L().Info("telegram bot authorized", zap.String("username", bot.Self.UserName))

		a := newApp(ctx, cfg, true)
		defer a.Close()

		r := &telegram.Router{Bot: bot, Calc: a.advisor}
		return r.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}
