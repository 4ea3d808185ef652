package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"newsletter-go/internal/logging"
	"newsletter-go/internal/models"
	"newsletter-go/internal/service"
)

type SubscriptionHandler struct {
	service *service.SubscriptionService
	logger  *logging.ContextLogger
	tracer  trace.Tracer
}

func NewSubscriptionHandler(service *service.SubscriptionService, logger *logging.ContextLogger) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: service,
		logger:  logger,
		tracer:  otel.Tracer("subscription-handler"),
	}
}

// Subscribe handles POST /subscriptions. Every outcome is a bare status code.
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "subscription.handler.subscribe")
	defer span.End()

	var form models.SubscriptionForm
	err := decodeForm(c, &form)
	if err != nil {
		h.logger.WarnWithTracing(ctx, "Invalid request payload", logrus.Fields{
			"endpoint": "POST /subscriptions",
			"error":    err.Error(),
		})
	} else {
		var subscription *models.Subscription
		subscription, err = h.service.Subscribe(ctx, &form)
		if subscription != nil {
			span.SetAttributes(attribute.String("subscription.id", subscription.ID.String()))
		}
	}

	status := StatusFor(err)
	if err != nil {
		span.RecordError(err)
	}
	span.SetAttributes(attribute.Int("http.status_code", status))

	c.Status(status)
}

// decodeForm reads url-encoded POST body fields only. Query string values are
// ignored and bodies of any other content type decode to empty fields.
func decodeForm(c *gin.Context, form *models.SubscriptionForm) error {
	if err := c.ShouldBindWith(form, binding.FormPost); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidSubscription, err)
	}
	return nil
}
