package subscription

import (
	"context"
	"errors"

	"github.com/dmitrymomot/mpsubs/pkg/mercadopago"
)

// mercadoPagoAPI is the part of *mercadopago.Client the provider calls.
type mercadoPagoAPI interface {
	CreatePreapprovalPlan(ctx context.Context, req mercadopago.PreapprovalPlanRequest) (*mercadopago.PreapprovalPlan, error)
	GetPreapproval(ctx context.Context, id string) (*mercadopago.Preapproval, error)
}

// MercadoPagoProvider implements BillingProvider on the MercadoPago
// preapproval API.
type MercadoPagoProvider struct {
	api           mercadoPagoAPI
	webhookSecret string
}

// NewMercadoPagoProvider wraps api. An empty webhookSecret disables
// notification signature checks.
func NewMercadoPagoProvider(api mercadoPagoAPI, webhookSecret string) *MercadoPagoProvider {
	if api == nil {
		panic("subscription: mercadopago client is required")
	}
	return &MercadoPagoProvider{api: api, webhookSecret: webhookSecret}
}

func (p *MercadoPagoProvider) CreatePlan(ctx context.Context, req PlanRequest) (*ProviderPlan, error) {
	currency := req.Amount.Currency
	if currency == "" {
		currency = CurrencyBRL
	}
	plan, err := p.api.CreatePreapprovalPlan(ctx, mercadopago.PreapprovalPlanRequest{
		BackURL: req.BackURL,
		Reason:  req.Reason,
		AutoRecurring: mercadopago.AutoRecurring{
			Frequency:         req.IntervalMonths,
			FrequencyType:     mercadopago.FrequencyMonths,
			TransactionAmount: req.Amount.Float(),
			CurrencyID:        currency,
		},
	})
	if err != nil {
		return nil, errors.Join(ErrExternalService, err)
	}
	return &ProviderPlan{
		ID:          PreapprovalPlanID(plan.ID),
		CheckoutURL: plan.InitPoint,
	}, nil
}

func (p *MercadoPagoProvider) GetPreapproval(ctx context.Context, id PreapprovalID) (*PreapprovalStatus, error) {
	pa, err := p.api.GetPreapproval(ctx, string(id))
	if err != nil {
		return nil, errors.Join(ErrExternalService, err)
	}
	return &PreapprovalStatus{
		ID:                id,
		PreapprovalPlanID: PreapprovalPlanID(pa.PreapprovalPlanID),
		Status:            pa.Status,
	}, nil
}

func (p *MercadoPagoProvider) VerifyNotification(_ context.Context, meta NotificationMeta, dataID string) error {
	if p.webhookSecret == "" {
		return nil
	}
	if err := mercadopago.VerifySignature(p.webhookSecret, meta.Signature, dataID, meta.RequestID); err != nil {
		return errors.Join(ErrInvalidSignature, err)
	}
	return nil
}
