package notifier

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"log/slog"

	"marketplace-leads/internal/email"
	"marketplace-leads/internal/leads"
)

const subjectPrefix = "Azure Marketplace lead for "

//go:embed templates/lead.html
var leadTemplateContent string

var leadTemplate = template.Must(template.New("lead").Parse(leadTemplateContent))

// StatusError reports a submission the provider did not accept.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("email provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("email provider returned status %d: %s", e.StatusCode, e.Detail)
}

type Config struct {
	From string
	To   string
}

type field struct {
	Label string
	Value string
}

type Notifier struct {
	cfg    Config
	sender email.Sender
	logger *slog.Logger
}

func New(cfg Config, sender email.Sender) *Notifier {
	return &Notifier{
		cfg:    cfg,
		sender: sender,
		logger: slog.With("pipe", "notifier"),
	}
}

// Build renders the notification for one lead without sending it.
func (n *Notifier) Build(lead leads.Lead) (email.Message, error) {
	info, err := lead.DecodeCustomerInfo()
	if err != nil {
		return email.Message{}, err
	}

	var body bytes.Buffer
	err = leadTemplate.Execute(&body, struct {
		Offer  string
		Fields []field
	}{
		Offer: lead.OfferDisplayName,
		Fields: []field{
			{"FirstName", info.FirstName},
			{"LastName", info.LastName},
			{"Title", info.Title},
			{"Company", info.Company},
			{"Email", info.Email},
			{"Phone", info.Phone},
			{"Country", info.Country},
		},
	})
	if err != nil {
		return email.Message{}, fmt.Errorf("failed to render lead %s: %w", lead.RowKey, err)
	}

	return email.Message{
		From:     n.cfg.From,
		To:       n.cfg.To,
		Subject:  subjectPrefix + lead.OfferDisplayName,
		BodyHTML: body.String(),
	}, nil
}

// Notify sends one email for lead. Anything other than an accepted submission
// is returned as an error; nothing is retried.
func (n *Notifier) Notify(ctx context.Context, lead leads.Lead) error {
	msg, err := n.Build(lead)
	if err != nil {
		return err
	}

	if err = msg.Validate(); err != nil {
		return err
	}

	res, err := n.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send lead %s: %w", lead.RowKey, err)
	}

	n.logger.Info(
		fmt.Sprintf("submitted %q", msg.Subject),
		"lead", lead.RowKey, "from", msg.From, "to", msg.To, "status", res.StatusCode, "message_id", res.MessageId,
	)

	if !res.Accepted() {
		return &StatusError{StatusCode: res.StatusCode, Detail: res.Detail}
	}

	return nil
}
