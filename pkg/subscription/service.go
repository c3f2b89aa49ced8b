package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/mpsubs/pkg/logger"
	"github.com/dmitrymomot/mpsubs/pkg/validator"
)

// Service drives checkout and reconciliation.
type Service interface {
	// Checkout registers a user for a plan and returns the hosted checkout
	// link. Input problems are returned as validator.Errors.
	Checkout(ctx context.Context, in CheckoutInput) (*CheckoutLink, error)

	// IssueLink creates a processor plan for user and plan and stores a
	// pending Subscription for it.
	IssueLink(ctx context.Context, user *User, plan *Plan) (*CheckoutLink, error)

	// HandleNotification reconciles one webhook delivery. It never fails;
	// the result tells the caller how to answer the processor.
	HandleNotification(ctx context.Context, payload []byte, meta NotificationMeta) Acknowledgment
}

// CheckoutInput is the registration form.
type CheckoutInput struct {
	Name   string
	Email  string
	PlanID PlanID
}

// Field names and messages shown on the registration form.
const (
	FieldName  = "nome"
	FieldEmail = "email"

	msgNameRequired = "Informe seu nome"
	msgNameTooLong  = "O nome deve ter no máximo 100 caracteres"
	msgEmailInvalid = "Informe um e-mail válido"
	msgEmailTooLong = "O e-mail deve ter no máximo 100 caracteres"
	msgEmailTaken   = "Este e-mail já está cadastrado"
)

const defaultWebhookTimeout = 10 * time.Second

type service struct {
	provider BillingProvider
	store    Store
	cfg      Config
	log      *slog.Logger
	recorder Recorder
	now      func() time.Time
}

// NewService panics when provider or store is nil.
func NewService(provider BillingProvider, store Store, cfg Config, opts ...ServiceOption) Service {
	if provider == nil {
		panic("subscription: BillingProvider is required")
	}
	if store == nil {
		panic("subscription: Store is required")
	}
	if cfg.WebhookTimeout <= 0 {
		cfg.WebhookTimeout = defaultWebhookTimeout
	}

	s := &service{
		provider: provider,
		store:    store,
		cfg:      cfg,
		log:      logger.Discard(),
		recorder: noopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("subscription"))
	return s
}

func (s *service) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutLink, error) {
	plan, err := s.store.GetPlan(ctx, in.PlanID)
	if err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validator.Apply(
		validator.Required(FieldName, in.Name, msgNameRequired),
		validator.MaxLen(FieldName, in.Name, 100, msgNameTooLong),
		validator.Email(FieldEmail, in.Email, msgEmailInvalid),
		validator.MaxLen(FieldEmail, in.Email, 100, msgEmailTooLong),
	); err != nil {
		return nil, err
	}

	user := &User{Name: in.Name, Email: in.Email}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, errors.Join(err, validator.Errors{{Field: FieldEmail, Message: msgEmailTaken}})
		}
		s.log.ErrorContext(ctx, "failed to create user", logger.PlanID(plan.ID), logger.Error(err))
		return nil, err
	}

	return s.IssueLink(ctx, user, plan)
}

func (s *service) IssueLink(ctx context.Context, user *User, plan *Plan) (*CheckoutLink, error) {
	if user == nil || plan == nil {
		return nil, fmt.Errorf("%w: user and plan are required", ErrInvalidArgument)
	}

	created, err := s.provider.CreatePlan(ctx, PlanRequest{
		Reason:         "Plano " + plan.Name,
		IntervalMonths: plan.IntervalMonths,
		Amount:         plan.Price,
		BackURL:        s.cfg.SuccessURL,
	})
	if err != nil {
		if !errors.Is(err, ErrExternalService) {
			err = errors.Join(ErrExternalService, err)
		}
		s.log.ErrorContext(ctx, "failed to create preapproval plan",
			logger.UserID(user.ID),
			logger.PlanID(plan.ID),
			logger.Error(err),
		)
		s.recorder.LinkIssued(err)
		return nil, err
	}

	sub := &Subscription{
		UserID:            user.ID,
		PlanID:            plan.ID,
		PreapprovalPlanID: created.ID,
	}
	if err := s.store.CreateSubscription(ctx, sub); err != nil {
		// The processor plan exists but nothing points at it locally; any
		// notification for it will be unmatched.
		if !errors.Is(err, ErrPersistence) {
			err = errors.Join(ErrPersistence, err)
		}
		s.log.ErrorContext(ctx, "preapproval plan created but subscription not stored",
			logger.UserID(user.ID),
			logger.PlanID(plan.ID),
			logger.PreapprovalPlanID(created.ID),
			logger.Error(err),
		)
		s.recorder.LinkIssued(err)
		return nil, err
	}

	s.log.InfoContext(ctx, "checkout link issued",
		logger.UserID(user.ID),
		logger.PlanID(plan.ID),
		logger.PreapprovalPlanID(created.ID),
	)
	s.recorder.LinkIssued(nil)

	return &CheckoutLink{PreapprovalPlanID: created.ID, URL: created.CheckoutURL}, nil
}

func (s *service) HandleNotification(ctx context.Context, payload []byte, meta NotificationMeta) Acknowledgment {
	n, err := ParseNotification(payload)
	if err != nil {
		s.log.WarnContext(ctx, "malformed notification dropped", logger.Error(err))
		s.recorder.NotificationHandled("", OutcomeMalformed)
		return ack(http.StatusBadRequest, MsgInvalidNotification, OutcomeMalformed)
	}

	if err := s.provider.VerifyNotification(ctx, meta, meta.SignedID(n)); err != nil {
		s.log.WarnContext(ctx, "notification signature rejected",
			logger.NotificationType(n.Type),
			logger.Error(err),
		)
		s.recorder.NotificationHandled(n.Type, OutcomeBadSignature)
		return ack(http.StatusUnauthorized, MsgInvalidSignature, OutcomeBadSignature)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.WebhookTimeout)
	defer cancel()

	var res Acknowledgment
	switch n.Type {
	case NotificationPreapproval:
		res = s.reconcile(ctx, PreapprovalID(n.DataID))
	case NotificationAuthorizedPayment:
		s.log.InfoContext(ctx, "authorized payment notification received",
			logger.NotificationType(n.Type),
			slog.String("action", n.Action),
			slog.String("payment_id", n.DataID),
		)
		res = ackOK(OutcomePaymentLogged)
	default:
		s.log.DebugContext(ctx, "notification ignored",
			logger.NotificationType(n.Type),
			slog.String("action", n.Action),
		)
		res = ackOK(OutcomeIgnored)
	}

	s.recorder.NotificationHandled(n.Type, res.Outcome)
	return res
}

// reconcile activates the subscription behind an authorized preapproval.
func (s *service) reconcile(ctx context.Context, id PreapprovalID) Acknowledgment {
	log := s.log.With(logger.NotificationType(NotificationPreapproval), logger.PreapprovalID(id))

	status, err := s.provider.GetPreapproval(ctx, id)
	if err != nil {
		log.ErrorContext(ctx, "preapproval lookup failed", logger.Error(err))
		return ack(http.StatusInternalServerError, MsgProcessingFailed, OutcomeLookupFailed)
	}
	log = log.With(logger.PreapprovalPlanID(status.PreapprovalPlanID))

	if !status.Authorized() {
		log.InfoContext(ctx, "preapproval not authorized, nothing to do", logger.Status(status.Status))
		return ackOK(OutcomeNotAuthorized)
	}

	sub, err := s.store.GetSubscriptionByPreapprovalPlanID(ctx, status.PreapprovalPlanID)
	if errors.Is(err, ErrSubscriptionNotFound) {
		log.WarnContext(ctx, "no subscription for preapproval plan")
		return ackOK(OutcomeUnmatched)
	}
	if err != nil {
		log.ErrorContext(ctx, "failed to load subscription", logger.Error(err))
		return ack(http.StatusInternalServerError, MsgProcessingFailed, OutcomePersistenceError)
	}

	if sub.ActivatedBy(id) {
		log.DebugContext(ctx, "subscription already active")
		return ackOK(OutcomeAlreadyActive)
	}

	plan, err := s.store.GetPlan(ctx, sub.PlanID)
	if err != nil {
		log.ErrorContext(ctx, "failed to load plan for subscription", logger.PlanID(sub.PlanID), logger.Error(err))
		return ack(http.StatusInternalServerError, MsgProcessingFailed, OutcomePersistenceError)
	}

	renewal := !sub.IsPending()
	sub.Activate(id, s.now(), plan.IntervalMonths)
	if err := s.store.SaveSubscription(ctx, sub); err != nil {
		log.ErrorContext(ctx, "failed to activate subscription", logger.Error(err))
		return ack(http.StatusInternalServerError, MsgProcessingFailed, OutcomePersistenceError)
	}

	log.InfoContext(ctx, "subscription activated",
		logger.UserID(sub.UserID),
		logger.PlanID(sub.PlanID),
		slog.Time("end_date", *sub.EndDate),
		slog.Bool("renewal", renewal),
	)
	return ackOK(OutcomeActivated)
}
