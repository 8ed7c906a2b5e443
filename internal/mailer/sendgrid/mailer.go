package sendgrid

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/magiclink/server/internal/logger"
	"github.com/magiclink/server/internal/model"
)

// Internal adapter interface to enable mocking without hitting the SendGrid
// API.
type sendAPI interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

var _ model.Mailer = (*Mailer)(nil)

// Mailer delivers magic-link emails through the SendGrid v3 mail/send API.
// The HTML body comes from a template file with {{username}}, {{email}},
// {{token}} and {{link}} placeholders.
type Mailer struct {
	api          sendAPI
	senderEmail  string
	senderName   string
	baseURL      string
	templateFile string
	logger       *logger.Logger
}

// Options configures a Mailer.
type Options struct {
	SenderEmail  string
	SenderName   string
	BaseURL      string
	TemplateFile string
}

// New creates a Mailer using a real SendGrid client.
func New(apiKey string, opts Options, logger *logger.Logger) *Mailer {
	return NewWithAPI(sendgrid.NewSendClient(apiKey), opts, logger)
}

// NewWithAPI allows injecting a mockable API (used in tests).
func NewWithAPI(api sendAPI, opts Options, logger *logger.Logger) *Mailer {
	return &Mailer{
		api:          api,
		senderEmail:  opts.SenderEmail,
		senderName:   opts.SenderName,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		templateFile: opts.TemplateFile,
		logger:       logger,
	}
}

// SendMagicLink emails the user a login link carrying the token.
func (m *Mailer) SendMagicLink(ctx context.Context, user model.User, token string) error {
	link := fmt.Sprintf("%s/login?token=%s", m.baseURL, url.QueryEscape(token))

	body, err := m.renderBody(user, token, link)
	if err != nil {
		return err
	}

	from := mail.NewEmail(m.senderName, m.senderEmail)
	to := mail.NewEmail(user.Username, user.Email)
	subject := fmt.Sprintf("Magic link for %s", user.Username)
	message := mail.NewSingleEmail(from, subject, to, "Open this link to log in: "+link, body)

	resp, err := m.api.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("failed to send email: sendgrid returned status %d", resp.StatusCode)
	}

	m.logger.Info("magic link email sent",
		"email", user.Email,
		"status", resp.StatusCode)

	return nil
}

func (m *Mailer) renderBody(user model.User, token, link string) (string, error) {
	tmpl, err := os.ReadFile(m.templateFile)
	if err != nil {
		return "", fmt.Errorf("failed to read email template: %w", err)
	}

	return strings.NewReplacer(
		"{{username}}", user.Username,
		"{{email}}", user.Email,
		"{{token}}", token,
		"{{link}}", link,
	).Replace(string(tmpl)), nil
}
