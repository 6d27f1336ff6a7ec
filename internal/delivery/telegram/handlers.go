package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NasaVasa/shadowprice/internal/usecase"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Handlers struct {
	userUC  *usecase.UserUsecase
	alertUC *usecase.AlertUsecase
	autoUC  *usecase.AutoAlertUsecase
	priceUC *usecase.PriceUsecase
	logger  *zap.Logger
}

func NewHandlers(userUC *usecase.UserUsecase, alertUC *usecase.AlertUsecase, autoUC *usecase.AutoAlertUsecase, priceUC *usecase.PriceUsecase, logger *zap.Logger) *Handlers {
	return &Handlers{userUC: userUC, alertUC: alertUC, autoUC: autoUC, priceUC: priceUC, logger: logger}
}

func (h *Handlers) HandleUpdate(ctx context.Context, api *tgbotapi.BotAPI, update tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	if update.Message.From == nil {
		return
	}
	if update.Message.IsCommand() {
		h.handleCommand(ctx, api, update)
		return
	}
}

func (h *Handlers) handleCommand(ctx context.Context, api *tgbotapi.BotAPI, update tgbotapi.Update) {
	command := update.Message.Command()
	args := update.Message.CommandArguments()
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	username := update.Message.From.UserName
	firstName := update.Message.From.FirstName

	h.logger.Info(
		"telegram command received",
		zap.Int64("chat_id", chatID),
		zap.Int64("telegram_user_id", userID),
		zap.String("username", username),
		zap.String("command", command),
		zap.String("args", args),
	)

	switch command {
	case "start":
		_, err := h.userUC.StartOrGetUser(ctx, userID, username, firstName)
		if err != nil {
			h.logger.Warn("start command failed", zap.Int64("telegram_user_id", userID), zap.Error(err))
			h.reply(api, chatID, "Failed to register. Please try again.")
			return
		}
		h.logger.Info("start command complete", zap.Int64("telegram_user_id", userID))
		h.reply(api, chatID, "Welcome to ShadowPrice.\n\n"+HelpText)
	case "help":
		h.reply(api, chatID, HelpText)
	case "price":
		ticker, err := ParseTicker(args)
		if err != nil {
			h.reply(api, chatID, "Usage: /price <TICKER>")
			return
		}
		price, err := h.priceUC.Quote(ctx, ticker)
		if err != nil {
			h.reply(api, chatID, h.errorMessage(err))
			return
		}
		h.reply(api, chatID, fmt.Sprintf("%s: $%s", strings.ToUpper(strings.TrimSpace(ticker)), price.StringFixed(2)))
	case "add_alert":
		ticker, kind, threshold, err := ParseAddAlertArgs(args)
		if err != nil {
			h.logger.Warn("add_alert invalid args", zap.Int64("telegram_user_id", userID), zap.String("args", args))
			h.reply(api, chatID, "Usage: /add_alert <TICKER> <above|below> <threshold>")
			return
		}
		alert, err := h.alertUC.AddAlert(ctx, userID, ticker, kind, threshold)
		if err != nil {
			h.logger.Warn("add_alert failed", zap.Int64("telegram_user_id", userID), zap.Error(err))
			h.reply(api, chatID, h.errorMessage(err))
			return
		}
		h.logger.Info("add_alert complete", zap.Int64("telegram_user_id", userID), zap.Uint("alert_id", alert.ID))
		h.reply(api, chatID, fmt.Sprintf("Alert created: #%d %s %s %s$", alert.ID, alert.Ticker, alert.Kind, alert.Threshold.String()))
	case "alerts":
		alerts, err := h.alertUC.ListAlerts(ctx, userID)
		if err != nil {
			h.logger.Warn("alerts list failed", zap.Int64("telegram_user_id", userID), zap.Error(err))
			h.reply(api, chatID, h.errorMessage(err))
			return
		}
		if len(alerts) == 0 {
			h.reply(api, chatID, "No alerts yet. Use /add_alert to create one.")
			return
		}
		var builder strings.Builder
		builder.WriteString("Your alerts:\n")
		for _, alert := range alerts {
			builder.WriteString(fmt.Sprintf("#%d %s %s %s$\n", alert.ID, alert.Ticker, alert.Kind, alert.Threshold.String()))
		}
		h.reply(api, chatID, builder.String())
	case "delete":
		alertID, err := ParseAlertID(args)
		if err != nil {
			h.logger.Warn("delete invalid args", zap.Int64("telegram_user_id", userID), zap.String("args", args))
			h.reply(api, chatID, "Usage: /delete <alert_id>")
			return
		}
		if err := h.alertUC.DeleteAlert(ctx, userID, alertID); err != nil {
			h.logger.Warn("delete failed", zap.Int64("telegram_user_id", userID), zap.Uint("alert_id", alertID), zap.Error(err))
			h.reply(api, chatID, h.errorMessage(err))
			return
		}
		h.logger.Info("delete complete", zap.Int64("telegram_user_id", userID), zap.Uint("alert_id", alertID))
		h.reply(api, chatID, fmt.Sprintf("Alert #%d deleted.", alertID))
	case "prices":
		quotes, err := h.priceUC.Snapshot(ctx, userID)
		if err != nil {
			h.logger.Warn("prices failed", zap.Int64("telegram_user_id", userID), zap.Error(err))
			h.reply(api, chatID, h.errorMessage(err))
			return
		}
		if len(quotes) == 0 {
			h.reply(api, chatID, "No prices to show. Use /add_alert to track a coin.")
			return
		}
		var builder strings.Builder
		builder.WriteString("Current prices:\n")
		for _, quote := range quotes {
			builder.WriteString(fmt.Sprintf("%s: $%s\n", quote.Ticker, quote.Price.StringFixed(2)))
		}
		h.reply(api, chatID, builder.String())
	case "auto_alerts":
		h.handleAutoAlerts(ctx, api, chatID, userID, args)
	default:
		h.logger.Warn("unknown command", zap.Int64("telegram_user_id", userID), zap.String("command", command))
		h.reply(api, chatID, "Unknown command.\n\n"+HelpText)
	}
}

func (h *Handlers) handleAutoAlerts(ctx context.Context, api *tgbotapi.BotAPI, chatID, userID int64, args string) {
	enabled, present, err := ParseToggle(args)
	if err != nil {
		h.reply(api, chatID, "Usage: /auto_alerts <on|off>")
		return
	}

	if !present {
		active, err := h.autoUC.IsGloballyEnabled(ctx, userID)
		if err != nil {
			h.logger.Warn("auto_alerts status failed", zap.Int64("telegram_user_id", userID), zap.Error(err))
			h.reply(api, chatID, h.errorMessage(err))
			return
		}
		status := "off"
		if active {
			status = "on"
		}
		h.reply(api, chatID, fmt.Sprintf("Auto-alerts are %s. Watch-list: %s", status, strings.Join(h.autoUC.WatchList(), ", ")))
		return
	}

	if err := h.autoUC.SetGlobal(ctx, userID, enabled); err != nil {
		h.logger.Warn("auto_alerts toggle failed", zap.Int64("telegram_user_id", userID), zap.Error(err))
		h.reply(api, chatID, h.errorMessage(err))
		return
	}
	h.logger.Info("auto_alerts toggle complete", zap.Int64("telegram_user_id", userID), zap.Bool("enabled", enabled))
	if enabled {
		h.reply(api, chatID, fmt.Sprintf("Auto-alerts enabled for: %s", strings.Join(h.autoUC.WatchList(), ", ")))
		return
	}
	h.reply(api, chatID, "Auto-alerts disabled.")
}

func (h *Handlers) errorMessage(err error) string {
	switch {
	case errors.Is(err, usecase.ErrUserNotRegistered):
		return "Please /start to register first."
	case errors.Is(err, usecase.ErrInvalidTicker):
		return "Invalid ticker. Use a symbol like BTC."
	case errors.Is(err, usecase.ErrUnknownTicker):
		return "Could not find a price for that ticker. Check the symbol."
	case errors.Is(err, usecase.ErrInvalidKind):
		return "Invalid direction. Use above or below."
	case errors.Is(err, usecase.ErrInvalidThreshold):
		return "Invalid threshold. Use a positive number like 50000."
	case errors.Is(err, usecase.ErrAlertNotFound):
		return "Alert not found."
	case errors.Is(err, usecase.ErrPriceUnavailable):
		return "Price is unavailable right now. Try again in a minute."
	}

	h.logger.Warn("unhandled error", zap.Error(err))
	return "Something went wrong. Please try again."
}

func (h *Handlers) reply(api *tgbotapi.BotAPI, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := api.Send(msg); err != nil {
		h.logger.Warn("failed to send message", zap.Error(err))
	}
}
