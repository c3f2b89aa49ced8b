package mercadopago_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mpsubs/pkg/mercadopago"
)

func TestParseSignature(t *testing.T) {
	t.Parallel()

	sig, err := mercadopago.ParseSignature("ts=1704908010, v1=abc123")
	require.NoError(t, err)
	assert.Equal(t, "1704908010", sig.Timestamp)
	assert.Equal(t, "abc123", sig.V1)

	for _, bad := range []string{"", "ts=1", "v1=abc", "garbage"} {
		_, err := mercadopago.ParseSignature(bad)
		assert.ErrorIs(t, err, mercadopago.ErrMalformedSignature, bad)
	}
}

func TestManifest(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "id:sub999;request-id:req-1;ts:1704908010;", mercadopago.Manifest("SUB999", "req-1", "1704908010"))
	assert.Equal(t, "id:sub999;ts:1704908010;", mercadopago.Manifest("SUB999", "", "1704908010"))
}

func TestVerifySignature(t *testing.T) {
	t.Parallel()

	const secret = "whsec"
	v1 := mercadopago.Sign(secret, "SUB999", "req-1", "1704908010")
	header := "ts=1704908010,v1=" + v1

	assert.NoError(t, mercadopago.VerifySignature(secret, header, "SUB999", "req-1"))

	tests := []struct {
		name      string
		secret    string
		header    string
		dataID    string
		requestID string
		want      error
	}{
		{"wrong secret", "other", header, "SUB999", "req-1", mercadopago.ErrInvalidSignature},
		{"wrong data id", secret, header, "SUB998", "req-1", mercadopago.ErrInvalidSignature},
		{"wrong request id", secret, header, "SUB999", "req-2", mercadopago.ErrInvalidSignature},
		{"tampered ts", secret, "ts=1704908011,v1=" + v1, "SUB999", "req-1", mercadopago.ErrInvalidSignature},
		{"missing header", secret, "", "SUB999", "req-1", mercadopago.ErrMalformedSignature},
		{"empty secret", "", header, "SUB999", "req-1", mercadopago.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := mercadopago.VerifySignature(tt.secret, tt.header, tt.dataID, tt.requestID)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
