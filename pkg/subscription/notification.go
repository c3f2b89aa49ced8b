package subscription

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Notification types the processor sends for subscriptions.
const (
	NotificationPreapproval       = "subscription_preapproval"
	NotificationAuthorizedPayment = "subscription_authorized_payment"
)

// Acknowledgment messages returned to the processor.
const (
	MsgReceived            = "Recebido com sucesso"
	MsgInvalidNotification = "Notificação inválida"
	MsgInvalidSignature    = "Assinatura inválida"
	MsgProcessingFailed    = "Erro ao processar notificação"
)

// Outcome classifies how a notification was handled.
type Outcome string

const (
	OutcomeActivated        Outcome = "activated"
	OutcomeAlreadyActive    Outcome = "already_active"
	OutcomeUnmatched        Outcome = "unmatched"
	OutcomeNotAuthorized    Outcome = "not_authorized"
	OutcomePaymentLogged    Outcome = "payment_logged"
	OutcomeIgnored          Outcome = "ignored"
	OutcomeMalformed        Outcome = "malformed"
	OutcomeBadSignature     Outcome = "bad_signature"
	OutcomeLookupFailed     Outcome = "lookup_failed"
	OutcomePersistenceError Outcome = "persistence_error"
)

// Notification is the webhook body: {"type", "action", "data": {"id"}}.
type Notification struct {
	Type   string
	Action string
	DataID string
}

// NotificationMeta carries the delivery details used for authentication.
// DataID is the data.id query parameter of the notification URL. The
// processor signs that value, so it takes precedence over the body's id.
type NotificationMeta struct {
	Signature string
	RequestID string
	DataID    string
}

// SignedID returns the resource id covered by the delivery signature.
func (m NotificationMeta) SignedID(n Notification) string {
	if m.DataID != "" {
		return m.DataID
	}
	return n.DataID
}

// Acknowledgment is the answer to a notification delivery.
type Acknowledgment struct {
	StatusCode int
	Message    string
	Outcome    Outcome
}

func ack(code int, msg string, outcome Outcome) Acknowledgment {
	return Acknowledgment{StatusCode: code, Message: msg, Outcome: outcome}
}

func ackOK(outcome Outcome) Acknowledgment {
	return ack(http.StatusOK, MsgReceived, outcome)
}

type rawNotification struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   *struct {
		ID json.RawMessage `json:"id"`
	} `json:"data"`
}

// ParseNotification decodes and validates a webhook body. data.id may be a
// JSON string or number. Missing type, action or data.id is an error.
func ParseNotification(payload []byte) (Notification, error) {
	var raw rawNotification
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Notification{}, fmt.Errorf("%w: %w", ErrInvalidNotification, err)
	}

	n := Notification{
		Type:   strings.TrimSpace(raw.Type),
		Action: strings.TrimSpace(raw.Action),
	}
	if raw.Data != nil {
		id, err := idString(raw.Data.ID)
		if err != nil {
			return Notification{}, err
		}
		n.DataID = id
	}

	switch {
	case n.Type == "":
		return Notification{}, fmt.Errorf("%w: missing type", ErrInvalidNotification)
	case n.Action == "":
		return Notification{}, fmt.Errorf("%w: missing action", ErrInvalidNotification)
	case n.DataID == "":
		return Notification{}, fmt.Errorf("%w: missing data.id", ErrInvalidNotification)
	}
	return n, nil
}

func idString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidNotification, err)
		}
		return strings.TrimSpace(s), nil
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return "", fmt.Errorf("%w: data.id must be a string or number", ErrInvalidNotification)
	}
	return num.String(), nil
}
