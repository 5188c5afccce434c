package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tooldesk/tooldesk/backend/config"
	"github.com/tooldesk/tooldesk/backend/models"
)

const defaultResendBaseURL = "https://api.resend.com"

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// Notifier e-mails requisition events through Resend. It is a no-op unless
// RESEND_API_KEY and RESEND_FROM_EMAIL are set.
type Notifier struct {
	apiKey          string
	fromEmail       string
	baseURL         string
	adminRecipients []string
	client          *http.Client
	logger          zerolog.Logger
}

// NewNotifier reads its settings from the config map:
//   - RESEND_API_KEY: Resend API key
//   - RESEND_FROM_EMAIL: sender, e.g. "Tooldesk <noreply@tooldesk.example>"
//   - RESEND_BASE_URL: API base, defaults to https://api.resend.com
//   - NOTIFY_EMAILS: comma separated admins told about new requisitions
func NewNotifier(cfg map[string]string) *Notifier {
	return &Notifier{
		apiKey:          config.GetString(cfg, "RESEND_API_KEY", ""),
		fromEmail:       config.GetString(cfg, "RESEND_FROM_EMAIL", ""),
		baseURL:         strings.TrimSuffix(config.GetString(cfg, "RESEND_BASE_URL", defaultResendBaseURL), "/"),
		adminRecipients: config.GetList(cfg, "NOTIFY_EMAILS"),
		client:          &http.Client{Timeout: 15 * time.Second},
		logger:          log.With().Str("service", "notifier").Logger(),
	}
}

func (n *Notifier) Enabled() bool {
	return n != nil && n.apiKey != "" && n.fromEmail != ""
}

// RequisitionSubmitted tells the admins about a new requisition.
func (n *Notifier) RequisitionSubmitted(ctx context.Context, r models.ProjectRequisition) error {
	if !n.Enabled() || len(n.adminRecipients) == 0 {
		return nil
	}

	subject := fmt.Sprintf("New project request: %s", r.Title)
	body := fmt.Sprintf(
		"<p><strong>%s</strong> submitted a new project request.</p>"+
			"<ul><li>Title: %s</li><li>Priority: %s</li><li>Category: %s</li><li>Contact: %s</li></ul>",
		html.EscapeString(r.RequesterName),
		html.EscapeString(r.Title),
		html.EscapeString(string(r.Priority)),
		html.EscapeString(r.Category),
		html.EscapeString(r.RequesterEmail),
	)
	return n.SendEmail(ctx, subject, body, n.adminRecipients)
}

// RequisitionStatusChanged tells the requester their request moved.
func (n *Notifier) RequisitionStatusChanged(ctx context.Context, r models.ProjectRequisition, previous models.RequisitionStatus) error {
	if !n.Enabled() || r.Status == previous {
		return nil
	}

	subject := fmt.Sprintf("Your project request is now %s", r.Status)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your request <strong>%s</strong> moved from %s to %s.</p>",
		html.EscapeString(r.RequesterName),
		html.EscapeString(r.Title),
		html.EscapeString(string(previous)),
		html.EscapeString(string(r.Status)),
	)
	if r.Status == models.StatusCompleted && r.DeployedLink != nil {
		link := html.EscapeString(*r.DeployedLink)
		body += fmt.Sprintf(`<p>It is live at <a href="%s">%s</a>.</p>`, link, link)
	}
	return n.SendEmail(ctx, subject, body, []string{r.RequesterEmail})
}

// SendEmail sends an HTML email using the Resend API
func (n *Notifier) SendEmail(ctx context.Context, subject, body string, recipients []string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	if !n.Enabled() {
		return fmt.Errorf("RESEND_API_KEY and RESEND_FROM_EMAIL are required to send email")
	}

	payload := ResendEmailRequest{
		From:    n.fromEmail,
		To:      recipients,
		Subject: subject,
		Html:    body,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/emails", bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message)
		}
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		n.logger.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		n.logger.Info().Str("emailId", emailResponse.ID).Str("subject", subject).Msg("Successfully sent email via Resend")
	}

	return nil
}
