/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

// Package notify delivers gateway test messages to local chat channels.
// These are used when the analysis service cannot be reached and the
// gateway verifies channel connectivity on its own.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/piyawatSritavong/cybersentinel/internal/config"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

// Channel sends a plain-text message to one destination.
type Channel interface {
	// Type identifies the channel kind: "telegram", "discord" or "slack".
	Type() string
	Send(ctx context.Context, text string) error
}

// FromConfig builds the channels that have credentials configured,
// keyed by channel type.
func FromConfig(cfg config.Config) map[string]Channel {
	channels := make(map[string]Channel)
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		channels["telegram"] = &TelegramChannel{BotToken: cfg.Telegram.BotToken, ChatID: cfg.Telegram.ChatID}
	}
	if cfg.Discord.WebhookURL != "" {
		channels["discord"] = &DiscordChannel{WebhookURL: cfg.Discord.WebhookURL}
	}
	if cfg.Slack.WebhookURL != "" {
		channels["slack"] = &SlackChannel{WebhookURL: cfg.Slack.WebhookURL}
	}
	return channels
}

func postJSON(ctx context.Context, endpoint string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("channel returned %d: %s", resp.StatusCode, excerpt)
	}
	return nil
}

// TelegramChannel sends messages through the Telegram bot API.
type TelegramChannel struct {
	BotToken string
	ChatID   string

	// BaseURL overrides the Telegram API host in tests.
	BaseURL string
}

func (t *TelegramChannel) Type() string { return "telegram" }

func (t *TelegramChannel) Send(ctx context.Context, text string) error {
	base := t.BaseURL
	if base == "" {
		base = "https://api.telegram.org"
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", base, url.PathEscape(t.BotToken))
	return postJSON(ctx, endpoint, map[string]string{
		"chat_id": t.ChatID,
		"text":    text,
	})
}

// DiscordChannel posts to a Discord webhook.
type DiscordChannel struct {
	WebhookURL string
}

func (d *DiscordChannel) Type() string { return "discord" }

func (d *DiscordChannel) Send(ctx context.Context, text string) error {
	return postJSON(ctx, d.WebhookURL, map[string]string{"content": text})
}

// SlackChannel posts to a Slack incoming webhook.
type SlackChannel struct {
	WebhookURL string
}

func (s *SlackChannel) Type() string { return "slack" }

func (s *SlackChannel) Send(ctx context.Context, text string) error {
	return postJSON(ctx, s.WebhookURL, map[string]string{"text": text})
}
