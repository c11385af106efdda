package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/landwatch/landwatch-analysis-api/internal/properties"
)

type DiscordMessage struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

// SendAnalysisReport posts a completed-analysis summary to the report
// webhook. A missing webhook URL is treated as notifications disabled.
func SendAnalysisReport(summary string) error {
	cfg, err := properties.Load()
	if err != nil {
		return err
	}
	if cfg.DiscordReportURL == "" {
		return nil
	}
	return send(cfg.DiscordReportURL, DiscordMessage{
		Embeds: []DiscordEmbed{
			{
				Title:       "🌿 Analysis complete",
				Description: summary,
				Color:       3066993, // green
			},
		},
	})
}

// SendErrorNotification posts a failure to the error webhook.
func SendErrorNotification(errorMessage string) error {
	cfg, err := properties.Load()
	if err != nil {
		return err
	}
	if cfg.DiscordErrorURL == "" {
		return nil
	}
	return send(cfg.DiscordErrorURL, DiscordMessage{
		Embeds: []DiscordEmbed{
			{
				Title:       "🚨 Analysis failed",
				Description: errorMessage,
				Color:       15158332, // red
			},
		},
	})
}

func send(url string, message DiscordMessage) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}
	resp, err := http.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send Discord notification, status code: %d", resp.StatusCode)
	}
	return nil
}
