package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"net/textproto"

	"gopkg.in/gomail.v2"

	"marketplace-leads/internal/email"
)

type dialer interface {
	Dial() (gomail.SendCloser, error)
}

type Client struct {
	dialer dialer
}

func New(cfg Config) *Client {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.AllowInsecureTls,
	}

	return &Client{dialer: d}
}

// Send relays the message. A completed transaction is reported as 202; an SMTP
// rejection is reported with its reply code and no error.
func (c *Client) Send(ctx context.Context, msg email.Message) (email.Response, error) {
	if err := ctx.Err(); err != nil {
		return email.Response{}, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.BodyHTML)

	conn, err := c.dialer.Dial()
	if err != nil {
		return email.Response{}, err
	}
	defer func() { _ = conn.Close() }()

	if err = conn.Send(msg.From, []string{msg.To}, m); err != nil {
		var protoErr *textproto.Error
		if errors.As(err, &protoErr) {
			return email.Response{StatusCode: protoErr.Code, Detail: protoErr.Msg}, nil
		}
		return email.Response{}, err
	}

	return email.Response{StatusCode: http.StatusAccepted}, nil
}
