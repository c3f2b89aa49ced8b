package subscription_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mpsubs/pkg/subscription"
	"github.com/dmitrymomot/mpsubs/pkg/validator"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CreatePlan(ctx context.Context, req subscription.PlanRequest) (*subscription.ProviderPlan, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.ProviderPlan), args.Error(1)
}

func (m *mockProvider) GetPreapproval(ctx context.Context, id subscription.PreapprovalID) (*subscription.PreapprovalStatus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.PreapprovalStatus), args.Error(1)
}

func (m *mockProvider) VerifyNotification(ctx context.Context, meta subscription.NotificationMeta, dataID string) error {
	args := m.Called(ctx, meta, dataID)
	return args.Error(0)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateUser(ctx context.Context, u *subscription.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockStore) GetPlan(ctx context.Context, id subscription.PlanID) (*subscription.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Plan), args.Error(1)
}

func (m *mockStore) ListPlans(ctx context.Context) ([]subscription.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]subscription.Plan), args.Error(1)
}

func (m *mockStore) CreateSubscription(ctx context.Context, s *subscription.Subscription) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockStore) GetSubscriptionByPreapprovalPlanID(ctx context.Context, id subscription.PreapprovalPlanID) (*subscription.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *mockStore) SaveSubscription(ctx context.Context, s *subscription.Subscription) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type recorded struct {
	notificationType string
	outcome          subscription.Outcome
}

type fakeRecorder struct {
	mu            sync.Mutex
	links         []error
	notifications []recorded
}

func (r *fakeRecorder) LinkIssued(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links = append(r.links, err)
}

func (r *fakeRecorder) NotificationHandled(notificationType string, outcome subscription.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, recorded{notificationType, outcome})
}

const successURL = "https://billing.example.com/mercadopago/sucesso"

var fixedNow = time.Date(2024, time.January, 31, 12, 0, 0, 0, time.UTC)

func proPlan() *subscription.Plan {
	return &subscription.Plan{ID: 1, Name: "Pro", Price: subscription.BRL(2990), IntervalMonths: 1}
}

func newService(p *mockProvider, s *mockStore, rec *fakeRecorder) subscription.Service {
	opts := []subscription.ServiceOption{
		subscription.WithClock(func() time.Time { return fixedNow }),
	}
	if rec != nil {
		opts = append(opts, subscription.WithRecorder(rec))
	}
	return subscription.NewService(p, s, subscription.Config{
		SuccessURL:     successURL,
		WebhookTimeout: time.Second,
	}, opts...)
}

func preapprovalPayload(id string) []byte {
	return []byte(`{"type":"subscription_preapproval","action":"updated","data":{"id":"` + id + `"}}`)
}

var anyCtx = mock.Anything

func TestNewServicePanicsOnNilDependencies(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { subscription.NewService(nil, &mockStore{}, subscription.Config{}) })
	assert.Panics(t, func() { subscription.NewService(&mockProvider{}, nil, subscription.Config{}) })
}

func TestIssueLink(t *testing.T) {
	t.Parallel()

	t.Run("creates exactly one pending subscription", func(t *testing.T) {
		t.Parallel()

		provider := &mockProvider{}
		store := &mockStore{}
		rec := &fakeRecorder{}

		provider.On("CreatePlan", anyCtx, subscription.PlanRequest{
			Reason:         "Plano Pro",
			IntervalMonths: 1,
			Amount:         subscription.BRL(2990),
			BackURL:        successURL,
		}).Return(&subscription.ProviderPlan{ID: "PLAN123", CheckoutURL: "https://pay/x"}, nil).Once()

		store.On("CreateSubscription", anyCtx, mock.MatchedBy(func(s *subscription.Subscription) bool {
			return s.UserID == 7 &&
				s.PlanID == 1 &&
				s.PreapprovalPlanID == "PLAN123" &&
				!s.Active &&
				s.StartDate == nil &&
				s.EndDate == nil &&
				s.PreapprovalID == ""
		})).Return(nil).Once()

		svc := newService(provider, store, rec)
		link, err := svc.IssueLink(context.Background(), &subscription.User{ID: 7, Name: "Ana", Email: "ana@example.com"}, proPlan())

		require.NoError(t, err)
		assert.Equal(t, "https://pay/x", link.URL)
		assert.Equal(t, subscription.PreapprovalPlanID("PLAN123"), link.PreapprovalPlanID)
		provider.AssertExpectations(t)
		store.AssertNumberOfCalls(t, "CreateSubscription", 1)
		assert.Equal(t, []error{nil}, rec.links)
	})

	t.Run("processor failure persists nothing", func(t *testing.T) {
		t.Parallel()

		provider := &mockProvider{}
		store := &mockStore{}
		rec := &fakeRecorder{}

		provider.On("CreatePlan", anyCtx, mock.Anything).
			Return(nil, errors.New("status 400")).Once()

		svc := newService(provider, store, rec)
		_, err := svc.IssueLink(context.Background(), &subscription.User{ID: 7}, proPlan())

		require.ErrorIs(t, err, subscription.ErrExternalService)
		store.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything)
		require.Len(t, rec.links, 1)
		assert.ErrorIs(t, rec.links[0], subscription.ErrExternalService)
	})

	t.Run("persistence failure after processor success", func(t *testing.T) {
		t.Parallel()

		provider := &mockProvider{}
		store := &mockStore{}

		provider.On("CreatePlan", anyCtx, mock.Anything).
			Return(&subscription.ProviderPlan{ID: "PLAN123", CheckoutURL: "https://pay/x"}, nil).Once()
		store.On("CreateSubscription", anyCtx, mock.Anything).
			Return(errors.New("connection reset")).Once()

		svc := newService(provider, store, nil)
		link, err := svc.IssueLink(context.Background(), &subscription.User{ID: 7}, proPlan())

		assert.Nil(t, link)
		assert.ErrorIs(t, err, subscription.ErrPersistence)
	})

	t.Run("nil arguments", func(t *testing.T) {
		t.Parallel()

		svc := newService(&mockProvider{}, &mockStore{}, nil)
		_, err := svc.IssueLink(context.Background(), nil, proPlan())
		assert.ErrorIs(t, err, subscription.ErrInvalidArgument)
	})
}

func TestCheckout(t *testing.T) {
	t.Parallel()

	t.Run("registers user and issues link", func(t *testing.T) {
		t.Parallel()

		provider := &mockProvider{}
		store := &mockStore{}

		store.On("GetPlan", anyCtx, subscription.PlanID(1)).Return(proPlan(), nil).Once()
		store.On("CreateUser", anyCtx, mock.MatchedBy(func(u *subscription.User) bool {
			return u.Name == "Ana Silva" && u.Email == "ana@example.com"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*subscription.User).ID = 7
		}).Return(nil).Once()
		provider.On("CreatePlan", anyCtx, mock.Anything).
			Return(&subscription.ProviderPlan{ID: "PLAN123", CheckoutURL: "https://pay/x"}, nil).Once()
		store.On("CreateSubscription", anyCtx, mock.MatchedBy(func(s *subscription.Subscription) bool {
			return s.UserID == 7 && s.PreapprovalPlanID == "PLAN123"
		})).Return(nil).Once()

		svc := newService(provider, store, nil)
		link, err := svc.Checkout(context.Background(), subscription.CheckoutInput{
			Name:   "  Ana Silva ",
			Email:  "Ana@Example.com",
			PlanID: 1,
		})

		require.NoError(t, err)
		assert.Equal(t, "https://pay/x", link.URL)
		store.AssertExpectations(t)
		provider.AssertExpectations(t)
	})

	t.Run("unknown plan", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		store.On("GetPlan", anyCtx, subscription.PlanID(99)).Return(nil, subscription.ErrPlanNotFound).Once()

		svc := newService(&mockProvider{}, store, nil)
		_, err := svc.Checkout(context.Background(), subscription.CheckoutInput{Name: "Ana", Email: "ana@example.com", PlanID: 99})

		assert.ErrorIs(t, err, subscription.ErrPlanNotFound)
		store.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("invalid input", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		store.On("GetPlan", anyCtx, subscription.PlanID(1)).Return(proPlan(), nil).Once()

		svc := newService(&mockProvider{}, store, nil)
		_, err := svc.Checkout(context.Background(), subscription.CheckoutInput{Name: " ", Email: "nope", PlanID: 1})

		errs := validator.Extract(err)
		require.NotNil(t, errs)
		assert.True(t, errs.Has(subscription.FieldName))
		assert.True(t, errs.Has(subscription.FieldEmail))
		store.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email becomes a field error", func(t *testing.T) {
		t.Parallel()

		provider := &mockProvider{}
		store := &mockStore{}
		store.On("GetPlan", anyCtx, subscription.PlanID(1)).Return(proPlan(), nil).Once()
		store.On("CreateUser", anyCtx, mock.Anything).Return(subscription.ErrEmailTaken).Once()

		svc := newService(provider, store, nil)
		_, err := svc.Checkout(context.Background(), subscription.CheckoutInput{Name: "Ana", Email: "ana@example.com", PlanID: 1})

		assert.ErrorIs(t, err, subscription.ErrEmailTaken)
		assert.True(t, validator.Extract(err).Has(subscription.FieldEmail))
		provider.AssertNotCalled(t, "CreatePlan", mock.Anything, mock.Anything)
	})

	t.Run("processor failure", func(t *testing.T) {
		t.Parallel()

		provider := &mockProvider{}
		store := &mockStore{}
		store.On("GetPlan", anyCtx, subscription.PlanID(1)).Return(proPlan(), nil).Once()
		store.On("CreateUser", anyCtx, mock.Anything).Return(nil).Once()
		provider.On("CreatePlan", anyCtx, mock.Anything).Return(nil, subscription.ErrExternalService).Once()

		svc := newService(provider, store, nil)
		_, err := svc.Checkout(context.Background(), subscription.CheckoutInput{Name: "Ana", Email: "ana@example.com", PlanID: 1})

		assert.ErrorIs(t, err, subscription.ErrExternalService)
		assert.Nil(t, validator.Extract(err))
	})
}

func TestHandleNotificationActivates(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{}
	store := &mockStore{}
	rec := &fakeRecorder{}

	pending := &subscription.Subscription{ID: 3, UserID: 7, PlanID: 1, PreapprovalPlanID: "PLAN123"}

	provider.On("VerifyNotification", anyCtx, mock.Anything, "SUB999").Return(nil)
	provider.On("GetPreapproval", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), subscription.PreapprovalID("SUB999")).Return(&subscription.PreapprovalStatus{
		ID:                "SUB999",
		PreapprovalPlanID: "PLAN123",
		Status:            "authorized",
	}, nil).Once()
	store.On("GetSubscriptionByPreapprovalPlanID", anyCtx, subscription.PreapprovalPlanID("PLAN123")).Return(pending, nil).Once()
	store.On("GetPlan", anyCtx, subscription.PlanID(1)).Return(proPlan(), nil).Once()
	store.On("SaveSubscription", anyCtx, mock.MatchedBy(func(s *subscription.Subscription) bool {
		return s.ID == 3 &&
			s.Active &&
			s.PreapprovalID == "SUB999" &&
			s.StartDate.Equal(fixedNow) &&
			s.EndDate.Equal(time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC))
	})).Return(nil).Once()

	svc := newService(provider, store, rec)
	res := svc.HandleNotification(context.Background(), preapprovalPayload("SUB999"), subscription.NotificationMeta{})

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, subscription.MsgReceived, res.Message)
	assert.Equal(t, subscription.OutcomeActivated, res.Outcome)
	provider.AssertExpectations(t)
	store.AssertExpectations(t)
	assert.Equal(t, []recorded{{subscription.NotificationPreapproval, subscription.OutcomeActivated}}, rec.notifications)
}

func TestHandleNotificationRedeliveryIsIdempotent(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{}
	store := &mockStore{}

	start := fixedNow.Add(-time.Hour)
	end := subscription.AddMonths(start, 1)
	active := &subscription.Subscription{
		ID: 3, UserID: 7, PlanID: 1,
		PreapprovalPlanID: "PLAN123",
		PreapprovalID:     "SUB999",
		Active:            true,
		StartDate:         &start,
		EndDate:           &end,
	}

	provider.On("VerifyNotification", anyCtx, mock.Anything, "SUB999").Return(nil)
	provider.On("GetPreapproval", anyCtx, subscription.PreapprovalID("SUB999")).
		Return(&subscription.PreapprovalStatus{ID: "SUB999", PreapprovalPlanID: "PLAN123", Status: "authorized"}, nil)
	store.On("GetSubscriptionByPreapprovalPlanID", anyCtx, subscription.PreapprovalPlanID("PLAN123")).Return(active, nil)

	svc := newService(provider, store, nil)
	res := svc.HandleNotification(context.Background(), preapprovalPayload("SUB999"), subscription.NotificationMeta{})

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, subscription.OutcomeAlreadyActive, res.Outcome)
	store.AssertNotCalled(t, "SaveSubscription", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "GetPlan", mock.Anything, mock.Anything)
	assert.Equal(t, start, *active.StartDate)
}

func TestHandleNotificationNoWrites(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		setup   func(p *mockProvider, s *mockStore)
		code    int
		message string
		outcome subscription.Outcome
	}{
		{
			name:    "malformed json",
			payload: `{"type":`,
			code:    http.StatusBadRequest,
			message: subscription.MsgInvalidNotification,
			outcome: subscription.OutcomeMalformed,
		},
		{
			name:    "missing type",
			payload: `{"action":"updated","data":{"id":"SUB999"}}`,
			code:    http.StatusBadRequest,
			message: subscription.MsgInvalidNotification,
			outcome: subscription.OutcomeMalformed,
		},
		{
			name:    "missing action",
			payload: `{"type":"subscription_preapproval","data":{"id":"SUB999"}}`,
			code:    http.StatusBadRequest,
			message: subscription.MsgInvalidNotification,
			outcome: subscription.OutcomeMalformed,
		},
		{
			name:    "missing data.id",
			payload: `{"type":"subscription_preapproval","action":"updated","data":{}}`,
			code:    http.StatusBadRequest,
			message: subscription.MsgInvalidNotification,
			outcome: subscription.OutcomeMalformed,
		},
		{
			name:    "bad signature",
			payload: string(preapprovalPayload("SUB999")),
			setup: func(p *mockProvider, _ *mockStore) {
				p.On("VerifyNotification", anyCtx, mock.Anything, "SUB999").Return(subscription.ErrInvalidSignature)
			},
			code:    http.StatusUnauthorized,
			message: subscription.MsgInvalidSignature,
			outcome: subscription.OutcomeBadSignature,
		},
		{
			name:    "unmatched preapproval plan",
			payload: string(preapprovalPayload("SUB404")),
			setup: func(p *mockProvider, s *mockStore) {
				p.On("VerifyNotification", anyCtx, mock.Anything, "SUB404").Return(nil)
				p.On("GetPreapproval", anyCtx, subscription.PreapprovalID("SUB404")).
					Return(&subscription.PreapprovalStatus{ID: "SUB404", PreapprovalPlanID: "PLAN404", Status: "authorized"}, nil)
				s.On("GetSubscriptionByPreapprovalPlanID", anyCtx, subscription.PreapprovalPlanID("PLAN404")).
					Return(nil, subscription.ErrSubscriptionNotFound)
			},
			code:    http.StatusOK,
			message: subscription.MsgReceived,
			outcome: subscription.OutcomeUnmatched,
		},
		{
			name:    "status not authorized",
			payload: string(preapprovalPayload("SUB999")),
			setup: func(p *mockProvider, _ *mockStore) {
				p.On("VerifyNotification", anyCtx, mock.Anything, "SUB999").Return(nil)
				p.On("GetPreapproval", anyCtx, subscription.PreapprovalID("SUB999")).
					Return(&subscription.PreapprovalStatus{ID: "SUB999", PreapprovalPlanID: "PLAN123", Status: "pending"}, nil)
			},
			code:    http.StatusOK,
			message: subscription.MsgReceived,
			outcome: subscription.OutcomeNotAuthorized,
		},
		{
			name:    "authorized payment is only logged",
			payload: `{"type":"subscription_authorized_payment","action":"created","data":{"id":7000000123}}`,
			setup: func(p *mockProvider, _ *mockStore) {
				p.On("VerifyNotification", anyCtx, mock.Anything, "7000000123").Return(nil)
			},
			code:    http.StatusOK,
			message: subscription.MsgReceived,
			outcome: subscription.OutcomePaymentLogged,
		},
		{
			name:    "unknown type",
			payload: `{"type":"payment","action":"payment.created","data":{"id":"1"}}`,
			setup: func(p *mockProvider, _ *mockStore) {
				p.On("VerifyNotification", anyCtx, mock.Anything, "1").Return(nil)
			},
			code:    http.StatusOK,
			message: subscription.MsgReceived,
			outcome: subscription.OutcomeIgnored,
		},
		{
			name:    "status lookup fails",
			payload: string(preapprovalPayload("SUB999")),
			setup: func(p *mockProvider, _ *mockStore) {
				p.On("VerifyNotification", anyCtx, mock.Anything, "SUB999").Return(nil)
				p.On("GetPreapproval", anyCtx, subscription.PreapprovalID("SUB999")).
					Return(nil, subscription.ErrExternalService)
			},
			code:    http.StatusInternalServerError,
			message: subscription.MsgProcessingFailed,
			outcome: subscription.OutcomeLookupFailed,
		},
		{
			name:    "subscription lookup fails",
			payload: string(preapprovalPayload("SUB999")),
			setup: func(p *mockProvider, s *mockStore) {
				p.On("VerifyNotification", anyCtx, mock.Anything, "SUB999").Return(nil)
				p.On("GetPreapproval", anyCtx, subscription.PreapprovalID("SUB999")).
					Return(&subscription.PreapprovalStatus{ID: "SUB999", PreapprovalPlanID: "PLAN123", Status: "authorized"}, nil)
				s.On("GetSubscriptionByPreapprovalPlanID", anyCtx, subscription.PreapprovalPlanID("PLAN123")).
					Return(nil, subscription.ErrPersistence)
			},
			code:    http.StatusInternalServerError,
			message: subscription.MsgProcessingFailed,
			outcome: subscription.OutcomePersistenceError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			provider := &mockProvider{}
			store := &mockStore{}
			if tt.setup != nil {
				tt.setup(provider, store)
			}

			svc := newService(provider, store, nil)
			res := svc.HandleNotification(context.Background(), []byte(tt.payload), subscription.NotificationMeta{})

			assert.Equal(t, tt.code, res.StatusCode)
			assert.Equal(t, tt.message, res.Message)
			assert.Equal(t, tt.outcome, res.Outcome)
			store.AssertNotCalled(t, "SaveSubscription", mock.Anything, mock.Anything)
			store.AssertNotCalled(t, "CreateSubscription", mock.Anything, mock.Anything)
		})
	}
}

func TestHandleNotificationSaveFailure(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{}
	store := &mockStore{}

	provider.On("VerifyNotification", anyCtx, mock.Anything, "SUB999").Return(nil)
	provider.On("GetPreapproval", anyCtx, subscription.PreapprovalID("SUB999")).
		Return(&subscription.PreapprovalStatus{ID: "SUB999", PreapprovalPlanID: "PLAN123", Status: "authorized"}, nil)
	store.On("GetSubscriptionByPreapprovalPlanID", anyCtx, subscription.PreapprovalPlanID("PLAN123")).
		Return(&subscription.Subscription{ID: 3, PlanID: 1, PreapprovalPlanID: "PLAN123"}, nil)
	store.On("GetPlan", anyCtx, subscription.PlanID(1)).Return(proPlan(), nil)
	store.On("SaveSubscription", anyCtx, mock.Anything).Return(subscription.ErrPersistence)

	svc := newService(provider, store, nil)
	res := svc.HandleNotification(context.Background(), preapprovalPayload("SUB999"), subscription.NotificationMeta{})

	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, subscription.MsgProcessingFailed, res.Message)
}

func TestHandleNotificationPassesMeta(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{}
	meta := subscription.NotificationMeta{Signature: "ts=1,v1=abc", RequestID: "req-1"}
	provider.On("VerifyNotification", anyCtx, meta, "1").Return(nil).Once()

	svc := newService(provider, &mockStore{}, nil)
	res := svc.HandleNotification(context.Background(), []byte(`{"type":"payment","action":"x","data":{"id":1}}`), meta)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	provider.AssertExpectations(t)
}

func TestHandleNotificationVerifiesQueryDataID(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{}
	meta := subscription.NotificationMeta{Signature: "ts=1,v1=abc", RequestID: "req-1", DataID: "777"}
	provider.On("VerifyNotification", anyCtx, meta, "777").Return(nil).Once()

	svc := newService(provider, &mockStore{}, nil)
	res := svc.HandleNotification(context.Background(), []byte(`{"type":"payment","action":"x","data":{"id":1}}`), meta)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	provider.AssertExpectations(t)
}
