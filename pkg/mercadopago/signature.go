package mercadopago

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// SignatureHeader is the header MercadoPago signs webhook deliveries with.
const SignatureHeader = "X-Signature"

// Signature is a parsed x-signature header: "ts=<timestamp>,v1=<hex hmac>".
type Signature struct {
	Timestamp string
	V1        string
}

// ParseSignature splits an x-signature header into its parts. Unknown keys
// are ignored.
func ParseSignature(header string) (Signature, error) {
	var sig Signature
	for part := range strings.SplitSeq(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(k) {
		case "ts":
			sig.Timestamp = strings.TrimSpace(v)
		case "v1":
			sig.V1 = strings.TrimSpace(v)
		}
	}
	if sig.Timestamp == "" || sig.V1 == "" {
		return Signature{}, fmt.Errorf("%w: ts and v1 are required", ErrMalformedSignature)
	}
	return sig, nil
}

// Manifest builds the signed template
// "id:<data.id>;request-id:<x-request-id>;ts:<ts>;". Alphanumeric ids are
// lower-cased and parts with empty values are left out.
func Manifest(dataID, requestID, ts string) string {
	var b strings.Builder
	if dataID != "" {
		b.WriteString("id:" + strings.ToLower(dataID) + ";")
	}
	if requestID != "" {
		b.WriteString("request-id:" + requestID + ";")
	}
	if ts != "" {
		b.WriteString("ts:" + ts + ";")
	}
	return b.String()
}

// Sign returns the hex HMAC-SHA256 of the manifest under secret.
func Sign(secret, dataID, requestID, ts string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(Manifest(dataID, requestID, ts)))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks header against the notification's data.id and the
// x-request-id of the delivery.
func VerifySignature(secret, header, dataID, requestID string) error {
	if secret == "" {
		return fmt.Errorf("%w: webhook secret is empty", ErrInvalidConfig)
	}
	sig, err := ParseSignature(header)
	if err != nil {
		return err
	}
	want := Sign(secret, dataID, requestID, sig.Timestamp)
	if !hmac.Equal([]byte(want), []byte(strings.ToLower(sig.V1))) {
		return ErrInvalidSignature
	}
	return nil
}
