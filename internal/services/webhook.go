package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/drivelane/drivelane/internal/models"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Footer      *DiscordFooter        `json:"footer,omitempty"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const (
	ColorRed    = 16711680 // #FF0000 - emergency raised
	ColorGreen  = 65280    // #00FF00 - resolved
	ColorOrange = 16753920 // #FFA500 - acknowledged

	WebhookUsername = "Drivelane Alerts"
)

// Alerter forwards emergencies to the operations channels.
type Alerter interface {
	EmergencyRaised(ctx context.Context, emergency models.Emergency, booking models.Booking) error
	EmergencyUpdated(ctx context.Context, emergency models.Emergency) error
}

// WebhookAlerter posts to Discord and Slack incoming webhooks. Empty URLs are skipped.
type WebhookAlerter struct {
	DiscordURL string
	SlackURL   string
	Client     *http.Client
}

func NewWebhookAlerter(discordURL, slackURL string) *WebhookAlerter {
	return &WebhookAlerter{
		DiscordURL: discordURL,
		SlackURL:   slackURL,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebhookAlerter) EmergencyRaised(ctx context.Context, emergency models.Emergency, booking models.Booking) error {
	location := emergency.Location
	if location == "" {
		location = "Not provided"
	}
	if emergency.Latitude != nil && emergency.Longitude != nil {
		location = fmt.Sprintf("%s (%.5f, %.5f)", location, *emergency.Latitude, *emergency.Longitude)
	}
	reportedAt := emergency.CreatedAt.UTC().Format("2006-01-02 15:04:05 UTC")

	discord := DiscordWebhookRequest{
		Username: WebhookUsername,
		Embeds: []DiscordEmbed{
			{
				Title:       "🚨 **EMERGENCY REPORTED**",
				Description: fmt.Sprintf("A customer reported a **%s** during booking #%d.", emergency.Type, booking.ID),
				Color:       ColorRed,
				Fields: []DiscordWebhookField{
					{Name: "Emergency", Value: fmt.Sprintf("#%d", emergency.ID), Inline: true},
					{Name: "Type", Value: string(emergency.Type), Inline: true},
					{Name: "Car", Value: carName(&booking), Inline: true},
					{Name: "Description", Value: orNone(emergency.Description), Inline: false},
					{Name: "Location", Value: location, Inline: false},
					{Name: "Reported At", Value: reportedAt, Inline: true},
				},
				Footer:    &DiscordFooter{Text: "Drivelane emergency desk"},
				Timestamp: time.Now().Format(time.RFC3339),
			},
		},
	}

	slack := SlackWebhookRequest{
		Username:  WebhookUsername,
		IconEmoji: ":rotating_light:",
		Text:      ":rotating_light: *EMERGENCY REPORTED*",
		Attachments: []SlackAttachment{
			{
				Color: "danger",
				Title: fmt.Sprintf("%s reported for booking #%d", emergency.Type, booking.ID),
				Text:  orNone(emergency.Description),
				Fields: []SlackField{
					{Title: "Emergency", Value: fmt.Sprintf("#%d", emergency.ID), Short: true},
					{Title: "Car", Value: carName(&booking), Short: true},
					{Title: "Location", Value: location, Short: false},
					{Title: "Reported At", Value: reportedAt, Short: false},
				},
				Footer:    "Drivelane emergency desk",
				Timestamp: time.Now().Unix(),
			},
		},
	}

	return w.send(ctx, discord, slack)
}

func (w *WebhookAlerter) EmergencyUpdated(ctx context.Context, emergency models.Emergency) error {
	color, slackColor, icon := ColorOrange, "warning", ":eyes:"
	if emergency.Status == models.EmergencyResolved {
		color, slackColor, icon = ColorGreen, "good", ":white_check_mark:"
	}

	discord := DiscordWebhookRequest{
		Username: WebhookUsername,
		Embeds: []DiscordEmbed{
			{
				Title:       fmt.Sprintf("Emergency #%d %s", emergency.ID, emergency.Status),
				Description: fmt.Sprintf("The %s reported for booking #%d is now **%s**.", emergency.Type, emergency.BookingID, emergency.Status),
				Color:       color,
				Footer:      &DiscordFooter{Text: "Drivelane emergency desk"},
				Timestamp:   time.Now().Format(time.RFC3339),
			},
		},
	}

	slack := SlackWebhookRequest{
		Username:  WebhookUsername,
		IconEmoji: icon,
		Text:      fmt.Sprintf("%s Emergency #%d is now *%s*", icon, emergency.ID, emergency.Status),
		Attachments: []SlackAttachment{
			{
				Color:     slackColor,
				Title:     fmt.Sprintf("%s on booking #%d", emergency.Type, emergency.BookingID),
				Footer:    "Drivelane emergency desk",
				Timestamp: time.Now().Unix(),
			},
		},
	}

	return w.send(ctx, discord, slack)
}

// send tries both channels and reports every failure.
func (w *WebhookAlerter) send(ctx context.Context, discord DiscordWebhookRequest, slack SlackWebhookRequest) error {
	var errs []error

	if w.DiscordURL != "" {
		if err := w.post(ctx, w.DiscordURL, discord); err != nil {
			errs = append(errs, fmt.Errorf("discord: %w", err))
		}
	}

	if w.SlackURL != "" {
		if err := w.post(ctx, w.SlackURL, slack); err != nil {
			errs = append(errs, fmt.Errorf("slack: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (w *WebhookAlerter) post(ctx context.Context, webhookURL string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
