package sms

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/attendance-reminder/internal/config"
	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

var (
	ErrNotConfigured = errors.New("sms provider is not configured")
	ErrAuth          = errors.New("sms provider rejected credentials")
	ErrProvider      = errors.New("sms provider error")
)

// Result is what the provider reports for an accepted message.
type Result struct {
	SID    string
	Status string
}

// Sender delivers a text message to an E.164 number.
type Sender interface {
	Send(ctx context.Context, to, body string) (*Result, error)
}

type messageAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// Client wraps the official Twilio SDK
type Client struct {
	api  messageAPI
	from string
}

// NewClient creates a new Twilio-backed sender. A client without
// credentials is returned as-is and fails every Send with ErrNotConfigured.
func NewClient(cfg config.SMSConfig) *Client {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return &Client{from: cfg.FromNumber}
	}

	rest := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &Client{
		api:  rest.Api,
		from: cfg.FromNumber,
	}
}

func (c *Client) Configured() bool {
	return c.api != nil && c.from != ""
}

func (c *Client) Send(ctx context.Context, to, body string) (*Result, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetBody(body)

	msg, err := c.api.CreateMessage(params)
	if err != nil {
		return nil, classify(err)
	}

	result := &Result{}
	if msg.Sid != nil {
		result.SID = *msg.Sid
	}
	if msg.Status != nil {
		result.Status = *msg.Status
	}
	return result, nil
}

func classify(err error) error {
	var restErr *twilioclient.TwilioRestError
	if errors.As(err, &restErr) {
		if restErr.Status == http.StatusUnauthorized || restErr.Code == 20003 {
			return fmt.Errorf("%w: %s", ErrAuth, restErr.Message)
		}
		return fmt.Errorf("%w: [%d] %s", ErrProvider, restErr.Code, restErr.Message)
	}
	return fmt.Errorf("%w: %v", ErrProvider, err)
}
