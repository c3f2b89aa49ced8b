package billing

import (
	"errors"
	"io"
	"net/http"

	"github.com/dmitrymomot/mpsubs/handler"
	"github.com/dmitrymomot/mpsubs/pkg/logger"
	"github.com/dmitrymomot/mpsubs/pkg/requestid"
	"github.com/dmitrymomot/mpsubs/pkg/subscription"
	"github.com/dmitrymomot/mpsubs/pkg/validator"
)

type checkoutForm struct {
	Name   string `form:"nome"`
	Email  string `form:"email"`
	PlanID string `form:"plano_id"`
}

func (m *module) index(ctx handler.Context, _ struct{}) handler.Response {
	plans, err := m.plans.ListPlans(ctx)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Templ(indexPage(plans, formState{}))
}

func (m *module) checkout(ctx handler.Context, req checkoutForm) handler.Response {
	planID, err := subscription.ParsePlanID(req.PlanID)
	if err != nil {
		return handler.Redirect(PathIndex)
	}

	link, err := m.svc.Checkout(ctx, subscription.CheckoutInput{
		Name:   req.Name,
		Email:  req.Email,
		PlanID: planID,
	})
	if err == nil {
		return handler.Redirect(link.URL)
	}

	if verrs := validator.Extract(err); verrs != nil {
		plans, lerr := m.plans.ListPlans(ctx)
		if lerr != nil {
			return handler.Error(lerr)
		}
		return handler.TemplStatus(http.StatusUnprocessableEntity, indexPage(plans, formState{
			Name:   req.Name,
			Email:  req.Email,
			PlanID: planID,
			Errors: verrs,
		}))
	}

	switch {
	case errors.Is(err, subscription.ErrPlanNotFound):
		return handler.Redirect(PathIndex)
	case errors.Is(err, subscription.ErrExternalService):
		// The payer can retry from the plan page.
		return handler.Redirect(PathIndex)
	default:
		return handler.Error(err)
	}
}

func (m *module) notification(w http.ResponseWriter, r *http.Request) {
	ctx := handler.NewContext(w, r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxNotificationBytes))
	if err != nil {
		m.log.WarnContext(ctx, "notification body rejected", logger.Error(err))
		m.render(ctx, handler.JSON(http.StatusBadRequest, ackBody{Status: subscription.MsgInvalidNotification}))
		return
	}

	ack := m.svc.HandleNotification(ctx, body, subscription.NotificationMeta{
		Signature: r.Header.Get("X-Signature"),
		RequestID: r.Header.Get(requestid.Header),
		DataID:    r.URL.Query().Get("data.id"),
	})
	m.render(ctx, handler.JSON(ack.StatusCode, ackBody{Status: ack.Message}))
}

// notificationCheck acknowledges GET checks from the processor dashboard.
func (m *module) notificationCheck(w http.ResponseWriter, r *http.Request) {
	ctx := handler.NewContext(w, r)
	m.render(ctx, handler.JSON(http.StatusOK, ackBody{Status: subscription.MsgReceived}))
}

func (m *module) success(handler.Context, struct{}) handler.Response {
	return handler.Templ(successPage())
}

type ackBody struct {
	Status string `json:"status"`
}

func (m *module) render(ctx handler.Context, resp handler.Response) {
	if err := resp.Render(ctx.ResponseWriter(), ctx.Request()); err != nil {
		m.log.ErrorContext(ctx, "failed to write response", logger.Error(err))
	}
}
