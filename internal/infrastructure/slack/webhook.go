package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

var (
	ErrWebhookNotConfigured = errors.New("slack webhook url is empty")
	ErrDelivery             = errors.New("slack delivery failed")
)

const defaultTimeout = 10 * time.Second

type Attachment struct {
	Pretext  string   `json:"pretext,omitempty"`
	Text     string   `json:"text"`
	Color    string   `json:"color,omitempty"`
	MrkdwnIn []string `json:"mrkdwn_in,omitempty"`
}

// Message тело входящего вебхука
type Message struct {
	Channel     string       `json:"channel,omitempty"`
	Username    string       `json:"username,omitempty"`
	IconEmoji   string       `json:"icon_emoji,omitempty"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type Sender struct {
	webhookURL string
	httpClient *http.Client
	log        *zap.Logger
}

func NewSender(webhookURL string, log *zap.Logger) (*Sender, error) {
	if webhookURL == "" {
		return nil, ErrWebhookNotConfigured
	}
	if _, err := url.ParseRequestURI(webhookURL); err != nil {
		return nil, fmt.Errorf("invalid slack webhook url: %w", err)
	}

	return &Sender{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        log,
	}, nil
}

func (s *Sender) Send(ctx context.Context, msg Message) error {
	s.log.Info("send slack message",
		zap.String("channel", msg.Channel),
		zap.Int("attachments", len(msg.Attachments)),
	)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: marshal message: %w", ErrDelivery, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.Error("slack request failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		s.log.Error("slack rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(raw)),
		)
		return fmt.Errorf("%w: status %d: %s", ErrDelivery, resp.StatusCode, string(raw))
	}

	s.log.Info("slack message sent", zap.String("channel", msg.Channel))
	return nil
}
