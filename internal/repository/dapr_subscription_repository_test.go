package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	dapr "github.com/dapr/go-sdk/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsletter-go/internal/models"
)

// fakeDaprClient implements only SaveState; any other call panics on the nil
// embedded interface.
type fakeDaprClient struct {
	dapr.Client

	store string
	saved map[string][]byte
	err   error
}

func (f *fakeDaprClient) SaveState(ctx context.Context, storeName, key string, data []byte, meta map[string]string, so ...dapr.StateOption) error {
	if f.err != nil {
		return f.err
	}
	f.store = storeName
	f.saved[key] = data
	return nil
}

func TestDaprInsertSavesJSONByID(t *testing.T) {
	client := &fakeDaprClient{saved: make(map[string][]byte)}
	repo := NewDaprSubscriptionRepository(client, "statestore")

	subscription := models.NewSubscription(&models.SubscriptionForm{Name: "le guin", Email: "ursula_le_guin@gmail.com"})
	require.NoError(t, repo.Insert(context.Background(), subscription))

	assert.Equal(t, "statestore", client.store)
	data, ok := client.saved[subscription.ID.String()]
	require.True(t, ok)

	var stored models.Subscription
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, subscription.ID, stored.ID)
	assert.Equal(t, "ursula_le_guin@gmail.com", stored.Email)
	assert.Equal(t, "le guin", stored.Name)
}

func TestDaprInsertPropagatesStoreError(t *testing.T) {
	storeErr := errors.New("sidecar unavailable")
	client := &fakeDaprClient{saved: make(map[string][]byte), err: storeErr}
	repo := NewDaprSubscriptionRepository(client, "statestore")

	err := repo.Insert(context.Background(), models.NewSubscription(&models.SubscriptionForm{Name: "a", Email: "b"}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, storeErr))
	assert.Empty(t, client.saved)
}
