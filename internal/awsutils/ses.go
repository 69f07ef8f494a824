package awsutils

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"marketplace-leads/internal/email"
)

const utf8Charset = "UTF-8"

type sesInterface interface {
	SendEmail(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SesEmailClient struct {
	client sesInterface
}

func NewSesEmailClient(client *ses.Client) *SesEmailClient {
	return &SesEmailClient{
		client: client,
	}
}

// Send submits the message to SES. An accepted submission is reported as 202;
// an API error carrying an HTTP response is reported with that status and no error.
func (c *SesEmailClient) Send(ctx context.Context, msg email.Message) (email.Response, error) {
	sesInput := &ses.SendEmailInput{
		Source: aws.String(msg.From),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String(utf8Charset)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(msg.BodyHTML), Charset: aws.String(utf8Charset)},
			},
		},
	}

	out, err := c.client.SendEmail(ctx, sesInput)
	if err != nil {
		var respErr *awshttp.ResponseError
		if errors.As(err, &respErr) {
			return email.Response{StatusCode: respErr.HTTPStatusCode(), Detail: respErr.Error()}, nil
		}
		return email.Response{}, err
	}

	return email.Response{StatusCode: http.StatusAccepted, MessageId: aws.ToString(out.MessageId)}, nil
}
