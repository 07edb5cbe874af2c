package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"events-system/internal/status"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

// recordIDPattern matches well-formed record identifiers. Anything
// else falls through to name resolution instead of failing.
var recordIDPattern = regexp.MustCompile(`^[a-z0-9]{15}$`)

// CatalogService resolves loose event references from client payloads
// into durable event records.
type CatalogService struct {
	store           Store
	defaultCapacity int
}

func NewCatalogService(store Store, defaultCapacity int) *CatalogService {
	if defaultCapacity <= 0 {
		defaultCapacity = 1000
	}
	return &CatalogService{
		store:           store,
		defaultCapacity: defaultCapacity,
	}
}

// Resolve finds an event by id, then by newest case-insensitive name
// match, then auto-creates a placeholder carrying the supplied name.
// The client is allowed to reference events by display name only; a
// ticket must still land on a durable record.
func (s *CatalogService) Resolve(ctx context.Context, eventID, eventName, location, description string) (*core.Record, error) {
	eventID = strings.TrimSpace(eventID)
	eventName = strings.TrimSpace(eventName)

	if recordIDPattern.MatchString(eventID) {
		if record, err := s.store.FindRecordById("events", eventID); err == nil {
			return record, nil
		}
		// unknown id: fall through to name resolution
	}

	if eventName == "" {
		return nil, status.ErrEventNotFound
	}

	matches, err := s.store.FindRecordsByFilter(
		"events",
		"name:lower = {:name}",
		"-date",
		1,
		0,
		dbx.Params{"name": strings.ToLower(eventName)},
	)
	if err == nil && len(matches) > 0 {
		return matches[0], nil
	}

	return s.createPlaceholder(ctx, eventName, location, description)
}

func (s *CatalogService) createPlaceholder(_ context.Context, name, location, description string) (*core.Record, error) {
	collection, err := s.store.FindCollectionByNameOrId("events")
	if err != nil {
		return nil, fmt.Errorf("catalog: find events collection: %w", err)
	}

	if location = strings.TrimSpace(location); location == "" {
		location = "TBD"
	}
	if description == "" {
		description = name
	}

	record := core.NewRecord(collection)
	record.Set("name", name)
	record.Set("description", description)
	record.Set("event_type", "bush_party")
	record.Set("date", types.NowDateTime())
	record.Set("location", location)
	record.Set("max_capacity", s.defaultCapacity)
	record.Set("price_per_ticket", 0)
	record.Set("is_active", true)

	if err := s.store.Save(record); err != nil {
		return nil, fmt.Errorf("catalog: create placeholder event: %w", err)
	}
	return record, nil
}
