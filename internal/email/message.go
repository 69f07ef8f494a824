package email

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// StatusAccepted is the only provider status treated as a successful submission.
const StatusAccepted = http.StatusAccepted

type Message struct {
	From     string `json:"from" validate:"required,email"`
	To       string `json:"to" validate:"required,email"`
	Subject  string `json:"subject" validate:"required"`
	BodyHTML string `json:"body_html" validate:"required"`
}

func (m Message) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("message validation failed: %w", err)
	}
	return nil
}

type Response struct {
	StatusCode int
	MessageId  string
	Detail     string
}

func (r Response) Accepted() bool {
	return r.StatusCode == StatusAccepted
}

type Sender interface {
	Send(ctx context.Context, msg Message) (Response, error)
}
