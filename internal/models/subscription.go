package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ErrInvalidSubscription = errors.New("invalid subscription")

// Subscription is the only persisted entity. ID and SubscribedAt are always
// generated server side.
type Subscription struct {
	bun.BaseModel `bun:"table:subscriptions" json:"-"`

	ID           uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Email        string    `bun:"email,notnull" json:"email"`
	Name         string    `bun:"name,notnull" json:"name"`
	SubscribedAt time.Time `bun:"subscribed_at,notnull" json:"subscribed_at"`
}

// SubscriptionForm is the decoded body of POST /subscriptions.
type SubscriptionForm struct {
	Email string `form:"email"`
	Name  string `form:"name"`
}

// Validate only checks that both fields are present. Email format, length and
// uniqueness are not checked.
func (f *SubscriptionForm) Validate() error {
	switch {
	case f.Name == "" && f.Email == "":
		return fmt.Errorf("%w: missing name and email", ErrInvalidSubscription)
	case f.Name == "":
		return fmt.Errorf("%w: missing name", ErrInvalidSubscription)
	case f.Email == "":
		return fmt.Errorf("%w: missing email", ErrInvalidSubscription)
	}
	return nil
}

func NewSubscription(form *SubscriptionForm) *Subscription {
	return &Subscription{
		ID:           uuid.New(),
		Email:        form.Email,
		Name:         form.Name,
		SubscribedAt: time.Now().UTC(),
	}
}
