package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"fixit-api/models"
)

const defaultExpoPushURL = "https://exp.host/--/api/v2/push/send"

// UserStore is the lookup the permission check needs.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// ExpoPusher delivers pushes through the Expo push gateway using the
// device token registered at login. Permission is granted when the
// user opted in and has a token on file.
type ExpoPusher struct {
	users  UserStore
	client *http.Client
	url    string
	log    zerolog.Logger
}

func NewExpoPusher(users UserStore, log zerolog.Logger) *ExpoPusher {
	url := os.Getenv("EXPO_PUSH_URL")
	if url == "" {
		url = defaultExpoPushURL
	}
	return &ExpoPusher{
		users:  users,
		client: &http.Client{Timeout: 10 * time.Second},
		url:    url,
		log:    log,
	}
}

func (p *ExpoPusher) Permission(ctx context.Context, userEmail string) (bool, error) {
	user, err := p.users.FindByEmail(ctx, userEmail)
	if err != nil {
		return false, err
	}
	return user.NotificationsEnabled && user.PushToken != "", nil
}

type expoPushMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound"`
}

func (p *ExpoPusher) Send(ctx context.Context, push Push) error {
	user, err := p.users.FindByEmail(ctx, push.UserEmail)
	if err != nil {
		return err
	}
	if user.PushToken == "" {
		return fmt.Errorf("no push token for %s", push.UserEmail)
	}

	payload, err := json.Marshal(expoPushMessage{
		To:    user.PushToken,
		Title: push.Title,
		Body:  push.Body,
		Data:  push.Data,
		Sound: "default",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("expo push returned %s", resp.Status)
	}
	return nil
}
