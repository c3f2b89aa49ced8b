package subscription_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mpsubs/pkg/subscription"
)

func TestParseNotification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    subscription.Notification
	}{
		{
			name:    "string id",
			payload: `{"type":"subscription_preapproval","action":"updated","data":{"id":"SUB999"}}`,
			want:    subscription.Notification{Type: "subscription_preapproval", Action: "updated", DataID: "SUB999"},
		},
		{
			name:    "numeric id",
			payload: `{"type":"subscription_authorized_payment","action":"created","data":{"id":7000000123}}`,
			want:    subscription.Notification{Type: "subscription_authorized_payment", Action: "created", DataID: "7000000123"},
		},
		{
			name:    "extra fields",
			payload: `{"id":1,"live_mode":true,"type":"payment","action":"payment.created","date_created":"2024-01-01T00:00:00Z","data":{"id":"1"}}`,
			want:    subscription.Notification{Type: "payment", Action: "payment.created", DataID: "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := subscription.ParseNotification([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNotificationInvalid(t *testing.T) {
	t.Parallel()

	payloads := map[string]string{
		"not json":        `type=subscription_preapproval`,
		"empty":           ``,
		"missing type":    `{"action":"updated","data":{"id":"SUB999"}}`,
		"missing action":  `{"type":"subscription_preapproval","data":{"id":"SUB999"}}`,
		"missing data":    `{"type":"subscription_preapproval","action":"updated"}`,
		"missing data.id": `{"type":"subscription_preapproval","action":"updated","data":{}}`,
		"null data.id":    `{"type":"subscription_preapproval","action":"updated","data":{"id":null}}`,
		"empty data.id":   `{"type":"subscription_preapproval","action":"updated","data":{"id":"  "}}`,
		"object data.id":  `{"type":"subscription_preapproval","action":"updated","data":{"id":{}}}`,
		"bool data.id":    `{"type":"subscription_preapproval","action":"updated","data":{"id":true}}`,
		"blank type":      `{"type":" ","action":"updated","data":{"id":"SUB999"}}`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := subscription.ParseNotification([]byte(payload))
			assert.ErrorIs(t, err, subscription.ErrInvalidNotification)
		})
	}
}
