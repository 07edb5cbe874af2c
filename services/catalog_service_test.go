package services

import (
	"context"
	"testing"

	"events-system/internal/status"

	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_ById(t *testing.T) {
	store := newFakeStore()
	service := NewCatalogService(store, 1000)
	event := store.mustAdd(t, "events", map[string]any{"name": "Bush Party"})

	resolved, err := service.Resolve(context.Background(), event.Id, "", "", "")

	require.NoError(t, err)
	assert.Equal(t, event.Id, resolved.Id)
}

func TestResolve_ByNameCaseInsensitive(t *testing.T) {
	store := newFakeStore()
	service := NewCatalogService(store, 1000)
	store.mustAdd(t, "events", map[string]any{"name": "Bush Party"})

	resolved, err := service.Resolve(context.Background(), "", "BUSH party", "", "")

	require.NoError(t, err)
	assert.Equal(t, "Bush Party", resolved.GetString("name"))
	assert.Equal(t, 1, store.count("events"), "no duplicate created")
}

func TestResolve_NewestNameMatchWins(t *testing.T) {
	store := newFakeStore()
	service := NewCatalogService(store, 1000)

	older, err := types.ParseDateTime("2026-01-10 18:00:00.000Z")
	require.NoError(t, err)
	newer, err := types.ParseDateTime("2026-06-20 18:00:00.000Z")
	require.NoError(t, err)

	store.mustAdd(t, "events", map[string]any{"name": "Bush Party", "date": older})
	want := store.mustAdd(t, "events", map[string]any{"name": "Bush Party", "date": newer})

	resolved, err := service.Resolve(context.Background(), "", "bush party", "", "")

	require.NoError(t, err)
	assert.Equal(t, want.Id, resolved.Id)
}

func TestResolve_UnknownIdFallsThroughToName(t *testing.T) {
	store := newFakeStore()
	service := NewCatalogService(store, 1000)
	event := store.mustAdd(t, "events", map[string]any{"name": "Bush Party"})

	// Well-formed but unknown id: name resolution still lands it.
	resolved, err := service.Resolve(context.Background(), "zzzzzzzzzzzzzzz", "Bush Party", "", "")

	require.NoError(t, err)
	assert.Equal(t, event.Id, resolved.Id)
}

func TestResolve_MalformedIdIsIgnored(t *testing.T) {
	store := newFakeStore()
	service := NewCatalogService(store, 1000)
	event := store.mustAdd(t, "events", map[string]any{"name": "Bush Party"})

	resolved, err := service.Resolve(context.Background(), "DROP TABLE events", "Bush Party", "", "")

	require.NoError(t, err)
	assert.Equal(t, event.Id, resolved.Id)
}

func TestResolve_CreatesPlaceholder(t *testing.T) {
	store := newFakeStore()
	service := NewCatalogService(store, 500)

	resolved, err := service.Resolve(context.Background(), "", "Pop Up Night", "", "")

	require.NoError(t, err)
	assert.Equal(t, "Pop Up Night", resolved.GetString("name"))
	assert.Equal(t, "Pop Up Night", resolved.GetString("description"), "description defaults to the name")
	assert.Equal(t, "bush_party", resolved.GetString("event_type"))
	assert.Equal(t, "TBD", resolved.GetString("location"))
	assert.Equal(t, 500, resolved.GetInt("max_capacity"))
	assert.Equal(t, 0.0, resolved.GetFloat("price_per_ticket"), "placeholders price at zero so tolerance is skipped")
	assert.True(t, resolved.GetBool("is_active"))
	assert.False(t, resolved.GetDateTime("date").IsZero())
	assert.Equal(t, 1, store.count("events"))
}

func TestResolve_PlaceholderKeepsSuppliedDetails(t *testing.T) {
	store := newFakeStore()
	service := NewCatalogService(store, 1000)

	resolved, err := service.Resolve(context.Background(), "", "Pop Up Night", "Yaba", "Street food and music")

	require.NoError(t, err)
	assert.Equal(t, "Yaba", resolved.GetString("location"))
	assert.Equal(t, "Street food and music", resolved.GetString("description"))
}

func TestResolve_NoUsableReference(t *testing.T) {
	store := newFakeStore()
	service := NewCatalogService(store, 1000)

	_, err := service.Resolve(context.Background(), "", "", "Lekki", "")

	assert.ErrorIs(t, err, status.ErrEventNotFound)
	assert.Equal(t, 0, store.count("events"))

	// A malformed id with no name is equally unusable.
	_, err = service.Resolve(context.Background(), "not-a-record-id", "  ", "", "")
	assert.ErrorIs(t, err, status.ErrEventNotFound)
}
