package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"newsletter-go/internal/models"
)

// SubscriptionRepository persists subscriptions. Insert writes the whole record
// or nothing; there is no update or delete.
type SubscriptionRepository interface {
	Insert(ctx context.Context, subscription *models.Subscription) error
}

type BunSubscriptionRepository struct {
	db      bun.IDB
	timeout time.Duration
	tracer  trace.Tracer
}

// NewBunSubscriptionRepository wraps the shared pool. A positive timeout
// bounds each insert, including the wait for a free pooled connection.
func NewBunSubscriptionRepository(db bun.IDB, timeout time.Duration) *BunSubscriptionRepository {
	return &BunSubscriptionRepository{
		db:      db,
		timeout: timeout,
		tracer:  otel.Tracer("subscription-repository"),
	}
}

func (r *BunSubscriptionRepository) Insert(ctx context.Context, subscription *models.Subscription) error {
	ctx, span := r.tracer.Start(ctx, "subscription.repository.insert",
		trace.WithAttributes(
			attribute.String("subscription.id", subscription.ID.String()),
			attribute.String("operation", "database.write"),
		))
	defer span.End()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if _, err := r.db.NewInsert().Model(subscription).Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return fmt.Errorf("failed to insert subscription: %w", err)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return nil
}
