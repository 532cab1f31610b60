package sms

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/attendance-reminder/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeMessageAPI struct {
	params *twilioApi.CreateMessageParams
	resp   *twilioApi.ApiV2010Message
	err    error
}

func (f *fakeMessageAPI) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	return f.resp, f.err
}

func strPtr(s string) *string { return &s }

func TestClient_NotConfigured(t *testing.T) {
	c := NewClient(config.SMSConfig{FromNumber: "+15550001111"})
	assert.False(t, c.Configured())

	_, err := c.Send(context.Background(), "+6281234567890", "hi")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_Send(t *testing.T) {
	api := &fakeMessageAPI{resp: &twilioApi.ApiV2010Message{Sid: strPtr("SM123"), Status: strPtr("queued")}}
	c := &Client{api: api, from: "+15550001111"}

	res, err := c.Send(context.Background(), "+6281234567890", "Please check out")
	require.NoError(t, err)
	assert.Equal(t, "SM123", res.SID)
	assert.Equal(t, "queued", res.Status)

	require.NotNil(t, api.params)
	assert.Equal(t, "+6281234567890", *api.params.To)
	assert.Equal(t, "+15550001111", *api.params.From)
	assert.Equal(t, "Please check out", *api.params.Body)
}

func TestClient_SendClassifiesErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"auth", &twilioclient.TwilioRestError{Code: 20003, Status: 401, Message: "Authenticate"}, ErrAuth},
		{"invalid number", &twilioclient.TwilioRestError{Code: 21211, Status: 400, Message: "Invalid 'To' Phone Number"}, ErrProvider},
		{"transport", errors.New("connection reset"), ErrProvider},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &Client{api: &fakeMessageAPI{err: tc.err}, from: "+15550001111"}
			_, err := c.Send(context.Background(), "+6281234567890", "hi")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
