// Slack client for operator notifications
//
// Env:
//   - SLACK_BOT_TOKEN: Slack Bot Token (xoxb-...)
//   - SLACK_CHANNEL_ID: channel ID (C...)
//
// Posts via chat.postMessage so messages can later be threaded.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/localtrip/backend/internal/config"
)

const slackPostMessageURL = "https://slack.com/api/chat.postMessage"

type SlackClient struct {
	botToken   string
	channelID  string
	apiURL     string
	httpClient *http.Client
}

type SlackMessage struct {
	Channel     string            `json:"channel"`
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
	ThreadTS    string            `json:"thread_ts,omitempty"`
}

type SlackAttachment struct {
	Color  string `json:"color"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	Footer string `json:"footer,omitempty"`
	Ts     int64  `json:"ts,omitempty"`
}

type SlackResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	TS    string `json:"ts,omitempty"`
}

func NewSlackClient(cfg config.SlackConfig) *SlackClient {
	return &SlackClient{
		botToken:  cfg.BotToken,
		channelID: cfg.ChannelID,
		apiURL:    slackPostMessageURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// IsConfigured reports whether both the bot token and channel ID are set.
func (c *SlackClient) IsConfigured() bool {
	return c.botToken != "" && c.channelID != ""
}

// Notify posts an ops message. Unconfigured clients drop the message silently.
func (c *SlackClient) Notify(ctx context.Context, title, text string) error {
	if !c.IsConfigured() {
		return nil
	}
	_, err := c.send(ctx, SlackMessage{
		Channel: c.channelID,
		Attachments: []SlackAttachment{
			{
				Color:  "#ffc107",
				Title:  title,
				Text:   toSlackMarkdown(text),
				Footer: "localtrip membership",
				Ts:     time.Now().Unix(),
			},
		},
	})
	return err
}

func (c *SlackClient) send(ctx context.Context, msg SlackMessage) (*SlackResponse, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.botToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var slackResp SlackResponse
	if err := json.Unmarshal(body, &slackResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !slackResp.OK {
		return nil, fmt.Errorf("slack API error: %s", slackResp.Error)
	}
	return &slackResp, nil
}

var (
	markdownBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	markdownHeading = regexp.MustCompile(`^#{1,6}\s+(.+)$`)
)

// toSlackMarkdown converts the CommonMark subset models emit (bold, headings) to
// Slack mrkdwn. Code spans and fenced blocks are left untouched.
func toSlackMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	inFence := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if m := markdownHeading.FindStringSubmatch(line); m != nil {
			lines[i] = "*" + m[1] + "*"
			continue
		}
		lines[i] = convertOutsideCode(line)
	}
	return strings.Join(lines, "\n")
}

func convertOutsideCode(line string) string {
	parts := strings.Split(line, "`")
	for i := 0; i < len(parts); i += 2 {
		parts[i] = markdownBold.ReplaceAllString(parts[i], "*$1*")
	}
	return strings.Join(parts, "`")
}
