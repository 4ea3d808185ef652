package service

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"newsletter-go/internal/logging"
	"newsletter-go/internal/models"
	"newsletter-go/internal/repository"
)

type SubscriptionService struct {
	repo   repository.SubscriptionRepository
	logger *logging.ContextLogger
	tracer trace.Tracer
}

func NewSubscriptionService(repo repository.SubscriptionRepository, logger *logging.ContextLogger) *SubscriptionService {
	return &SubscriptionService{
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("subscription-service"),
	}
}

// Subscribe validates the form, builds a new record and inserts it once.
// Invalid forms return models.ErrInvalidSubscription and never reach the
// repository. Store errors are logged and returned as is; nothing is retried.
func (s *SubscriptionService) Subscribe(ctx context.Context, form *models.SubscriptionForm) (*models.Subscription, error) {
	ctx, span := s.tracer.Start(ctx, "subscription.service.subscribe")
	defer span.End()

	if err := form.Validate(); err != nil {
		s.logger.WarnWithTracing(ctx, "Rejected invalid subscription", logrus.Fields{
			"reason": err.Error(),
		})
		span.SetAttributes(attribute.String("error.type", "validation_error"))
		return nil, err
	}

	subscription := models.NewSubscription(form)
	span.SetAttributes(attribute.String("subscription.id", subscription.ID.String()))

	s.logger.InfoWithTracing(ctx, "Saving new subscriber details in the database", logrus.Fields{
		"subscription_id": subscription.ID.String(),
		"email":           subscription.Email,
		"name":            subscription.Name,
	})

	if err := s.repo.Insert(ctx, subscription); err != nil {
		s.logger.ErrorWithTracing(ctx, "Failed to execute query", err, logrus.Fields{
			"subscription_id": subscription.ID.String(),
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, err
	}

	s.logger.InfoWithTracing(ctx, "New subscriber details have been saved", logrus.Fields{
		"subscription_id": subscription.ID.String(),
	})
	span.SetAttributes(attribute.Bool("success", true))

	return subscription, nil
}
