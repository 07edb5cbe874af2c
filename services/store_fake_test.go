package services

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store for service tests. It understands
// the handful of equality filters the services actually issue and
// enforces the same unique indexes the migrations declare, so the
// insert-race fallback paths are testable without a database.
type fakeStore struct {
	mu          sync.Mutex
	collections map[string]*core.Collection
	records     map[string][]*core.Record
	seq         int

	// saveHook runs before the regular save logic; tests use it to
	// inject unique violations and concurrent winners.
	saveHook func(record *core.Record) error
}

var uniqueFields = map[string]string{
	"tickets":  "code",
	"payments": "reference",
}

func newFakeStore() *fakeStore {
	f := &fakeStore{
		collections: map[string]*core.Collection{},
		records:     map[string][]*core.Record{},
	}

	events := core.NewBaseCollection("events")
	events.Fields.Add(
		&core.TextField{Name: "name"},
		&core.TextField{Name: "description"},
		&core.TextField{Name: "event_type"},
		&core.DateField{Name: "date"},
		&core.TextField{Name: "location"},
		&core.NumberField{Name: "max_capacity"},
		&core.NumberField{Name: "price_per_ticket"},
		&core.BoolField{Name: "is_active"},
	)
	f.collections["events"] = events

	tickets := core.NewBaseCollection("tickets")
	tickets.Fields.Add(
		&core.TextField{Name: "code"},
		&core.TextField{Name: "event"},
		&core.TextField{Name: "customer_name"},
		&core.TextField{Name: "customer_email"},
		&core.TextField{Name: "phone"},
		&core.NumberField{Name: "quantity"},
		&core.NumberField{Name: "amount_paid"},
		&core.BoolField{Name: "verified"},
		&core.DateField{Name: "verified_at"},
		&core.TextField{Name: "verified_by"},
		&core.TextField{Name: "order_reference"},
	)
	f.collections["tickets"] = tickets

	payments := core.NewBaseCollection("payments")
	payments.Fields.Add(
		&core.TextField{Name: "ticket"},
		&core.TextField{Name: "booking"},
		&core.TextField{Name: "payer_name"},
		&core.TextField{Name: "phone"},
		&core.TextField{Name: "email"},
		&core.NumberField{Name: "amount"},
		&core.TextField{Name: "method"},
		&core.TextField{Name: "reference"},
		&core.TextField{Name: "status"},
		&core.TextField{Name: "notes"},
	)
	f.collections["payments"] = payments

	return f
}

// mustAdd seeds a record directly, bypassing the saveHook.
func (f *fakeStore) mustAdd(t *testing.T, collection string, fields map[string]any) *core.Record {
	t.Helper()

	col, ok := f.collections[collection]
	require.True(t, ok, "unknown collection %q", collection)

	record := core.NewRecord(col)
	for k, v := range fields {
		record.Set(k, v)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if record.Id == "" {
		record.Id = f.nextID()
	}
	f.records[collection] = append(f.records[collection], record)
	return record
}

// nextID yields ids shaped like real record identifiers. Callers must
// hold f.mu.
func (f *fakeStore) nextID() string {
	f.seq++
	return fmt.Sprintf("rec%012d", f.seq)
}

func (f *fakeStore) count(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records[collection])
}

func collectionName(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case *core.Collection:
		return c.Name
	default:
		return fmt.Sprintf("%v", v)
	}
}

// matchesFilter evaluates single-field equality filters such as
// "code = {:code}" and "name:lower = {:name}".
func matchesFilter(record *core.Record, filter string, params []dbx.Params) bool {
	parts := strings.SplitN(filter, " = ", 2)
	if len(parts) != 2 {
		return false
	}
	field := parts[0]
	paramKey := strings.TrimSuffix(strings.TrimPrefix(parts[1], "{:"), "}")

	var want any
	for _, p := range params {
		if v, ok := p[paramKey]; ok {
			want = v
		}
	}
	wantStr := fmt.Sprintf("%v", want)

	if base := strings.TrimSuffix(field, ":lower"); base != field {
		return strings.ToLower(record.GetString(base)) == wantStr
	}
	return record.GetString(field) == wantStr
}

func (f *fakeStore) FindRecordById(col any, recordID string, _ ...func(q *dbx.SelectQuery) error) (*core.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records[collectionName(col)] {
		if r.Id == recordID {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) FindFirstRecordByFilter(col any, filter string, params ...dbx.Params) (*core.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records[collectionName(col)] {
		if matchesFilter(r, filter, params) {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) FindRecordsByFilter(col any, filter string, sortExpr string, limit, offset int, params ...dbx.Params) ([]*core.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*core.Record
	for _, r := range f.records[collectionName(col)] {
		if matchesFilter(r, filter, params) {
			matched = append(matched, r)
		}
	}

	if sortExpr == "-date" {
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].GetDateTime("date").Time().After(matched[j].GetDateTime("date").Time())
		})
	}

	if offset > 0 {
		if offset >= len(matched) {
			return nil, nil
		}
		matched = matched[offset:]
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *fakeStore) FindCollectionByNameOrId(nameOrID string) (*core.Collection, error) {
	if col, ok := f.collections[nameOrID]; ok {
		return col, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) Save(model core.Model) error {
	record, ok := model.(*core.Record)
	if !ok {
		return fmt.Errorf("fakeStore: unexpected model %T", model)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveHook != nil {
		if err := f.saveHook(record); err != nil {
			return err
		}
	}

	name := record.Collection().Name
	if record.Id == "" {
		record.Id = f.nextID()
	}

	if field := uniqueFields[name]; field != "" {
		if value := record.GetString(field); value != "" {
			for _, other := range f.records[name] {
				if other.Id != record.Id && other.GetString(field) == value {
					return fmt.Errorf("UNIQUE constraint failed: %s.%s", name, field)
				}
			}
		}
	}

	for _, existing := range f.records[name] {
		if existing.Id == record.Id {
			// same pointer, already updated in place
			return nil
		}
	}
	f.records[name] = append(f.records[name], record)
	return nil
}
