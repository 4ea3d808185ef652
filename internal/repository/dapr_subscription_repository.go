package repository

import (
	"context"
	"encoding/json"
	"fmt"

	dapr "github.com/dapr/go-sdk/client"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"newsletter-go/internal/models"
)

// DaprSubscriptionRepository stores each subscription as one JSON document in
// a Dapr state store, keyed by its id.
type DaprSubscriptionRepository struct {
	client    dapr.Client
	tracer    trace.Tracer
	storeName string
}

func NewDaprSubscriptionRepository(client dapr.Client, storeName string) *DaprSubscriptionRepository {
	return &DaprSubscriptionRepository{
		client:    client,
		tracer:    otel.Tracer("dapr.repository"),
		storeName: storeName,
	}
}

func (r *DaprSubscriptionRepository) Insert(ctx context.Context, subscription *models.Subscription) error {
	ctx, span := r.tracer.Start(ctx, "subscription.repository.insert",
		trace.WithAttributes(
			attribute.String("subscription.id", subscription.ID.String()),
			attribute.String("operation", "database.write"),
			attribute.String("dapr.store", r.storeName),
		))
	defer span.End()

	data, err := json.Marshal(subscription)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal subscription: %w", err)
	}

	if err := r.client.SaveState(ctx, r.storeName, subscription.ID.String(), data, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save state failed")
		return fmt.Errorf("failed to save subscription to dapr state store: %w", err)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return nil
}
