package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MailjetSender posts messages to the Mailjet v3 send API.
type MailjetSender struct {
	apiKey     string
	apiSecret  string
	endpoint   string
	httpClient *http.Client
}

func NewMailjetSender(apiKey, apiSecret, endpoint string, timeout time.Duration) *MailjetSender {
	return &MailjetSender{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		endpoint:  endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type mailjetRecipient struct {
	Email string `json:"Email"`
}

type mailjetRequest struct {
	FromEmail  string             `json:"FromEmail"`
	FromName   string             `json:"FromName"`
	Subject    string             `json:"Subject"`
	HTMLPart   string             `json:"Html-part"`
	Recipients []mailjetRecipient `json:"Recipients"`
}

func (s *MailjetSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	body, err := json.Marshal(mailjetRequest{
		FromEmail:  msg.From,
		FromName:   msg.From,
		Subject:    msg.Subject,
		HTMLPart:   msg.HTML,
		Recipients: []mailjetRecipient{{Email: msg.To}},
	})
	if err != nil {
		return fmt.Errorf("failed to encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.SetBasicAuth(s.apiKey, s.apiSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("mailjet rejected email (status %d): %s", resp.StatusCode, string(respBody))
	}

	return nil
}
