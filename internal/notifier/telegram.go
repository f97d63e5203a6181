package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	apperr "KodalReport/internal/errors"
	"KodalReport/internal/httpx"
	"KodalReport/internal/model"
)

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	APIURL   string
	Client   *http.Client
	Logger   zerolog.Logger
}

// NewTelegramNotifier creates a notifier. A nil client uses http.DefaultClient.
func NewTelegramNotifier(apiURL, botToken, chatID string, client *http.Client, logger zerolog.Logger) *TelegramNotifier {
	if client == nil {
		client = http.DefaultClient
	}
	if apiURL == "" {
		apiURL = "https://api.telegram.org"
	}
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		APIURL:   strings.TrimRight(apiURL, "/"),
		Client:   client,
		Logger:   logger,
	}
}

// Send posts text to the configured chat with Markdown parsing. Missing
// credentials yield a ConfigError without any request; a non-2xx response
// yields a DeliveryError. Sends are not retried.
func (t *TelegramNotifier) Send(ctx context.Context, text string) (*model.NotificationResult, error) {
	if err := t.checkCredentials(); err != nil {
		t.Logger.Error().Err(err).Msg("telegram credentials missing, report not delivered")
		return &model.NotificationResult{ErrorMessage: err.Error()}, err
	}

	form := url.Values{}
	form.Set("chat_id", t.ChatID)
	form.Set("text", text)
	form.Set("parse_mode", "Markdown")

	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.APIURL, t.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &model.NotificationResult{ErrorMessage: "build request"}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.Client.Do(req)
	if err != nil {
		err = fmt.Errorf("send message: %w", httpx.RedactURL(err, t.BotToken))
		t.Logger.Error().Err(err).Msg("telegram send failed")
		return &model.NotificationResult{ErrorMessage: err.Error()}, err
	}
	defer resp.Body.Close()

	result := &model.NotificationResult{StatusCode: resp.StatusCode}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		derr := apperr.NewDeliveryError(resp.StatusCode, string(respBody))
		t.Logger.Error().Int("status", resp.StatusCode).Str("body", string(respBody)).Msg("telegram API rejected message")
		result.ErrorMessage = derr.Error()
		return result, derr
	}

	result.Delivered = true
	t.Logger.Info().Int("status", resp.StatusCode).Str("chat_id", t.ChatID).Msg("report delivered")
	return result, nil
}

func (t *TelegramNotifier) checkCredentials() error {
	if t.BotToken == "" {
		return apperr.NewConfigError("telegram.bot_token", "TELEGRAM_TOKEN is not set")
	}
	if t.ChatID == "" {
		return apperr.NewConfigError("telegram.chat_id", "TELEGRAM_CHAT_ID is not set")
	}
	return nil
}
