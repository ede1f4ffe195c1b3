// ABOUTME: Case record service with transactional change capture
// ABOUTME: Explicit actor parameter; data row and audit rows commit in one transaction

package casefile

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gahenax/hotel-gateway/internal/store"
)

// EntityCase is the change-log entity kind for case records.
const EntityCase = "CASE"

// AnonymousActor is recorded when no acting user is known. The change log
// never stores a blank actor.
const AnonymousActor = "anonymous"

// caseStore is the subset of store behavior the service needs.
type caseStore interface {
	store.CaseStore
	store.ChangeLogStore
}

// Service owns case record mutations and their audit capture. Every mutation
// is an explicit call carrying the actor; there is no ambient actor state and
// no persistence-layer hook.
type Service struct {
	db     caseStore
	logger *slog.Logger
	now    func() time.Time
}

// New creates a case service over the given store.
func New(db caseStore) *Service {
	return &Service{
		db:     db,
		logger: slog.Default().With("component", "casefile"),
		now:    time.Now,
	}
}

// Changes is the set of fields an update may touch. A nil pointer means the
// field is absent from the request and is not compared or written.
type Changes struct {
	FiledOn *string
	Status  *string
	Parties *string
	Notes   *string
}

func actorOrAnonymous(actor string) string {
	if actor == "" {
		return AnonymousActor
	}
	return actor
}

// Create inserts a new case record and one CREATE change entry holding the
// full initial state as a JSON snapshot, in a single transaction.
func (s *Service) Create(ctx context.Context, actor string, c *store.CaseRecord) error {
	actor = actorOrAnonymous(actor)

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := s.db.CreateCaseTx(ctx, tx, c); err != nil {
			return err
		}

		snapshot, err := json.Marshal(map[string]string{
			"case_number": c.CaseNumber,
			"filed_on":    c.FiledOn,
			"status":      c.Status,
			"parties":     c.Parties,
			"notes":       c.Notes,
		})
		if err != nil {
			return fmt.Errorf("marshaling case snapshot: %w", err)
		}
		snapshotStr := string(snapshot)

		return s.db.AppendChangeEntryTx(ctx, tx, &store.ChangeEntry{
			Actor:    actor,
			Action:   store.ChangeActionCreate,
			Entity:   EntityCase,
			EntityID: c.ID,
			NewValue: &snapshotStr,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("created case", "id", c.ID, "number", c.CaseNumber, "actor", actor)
	return nil
}

// Update applies the given changes to a case record, writing one UPDATE
// change entry per field whose value actually differs. Fields absent from
// the change set and fields whose new value equals the old produce no rows.
// Data and audit rows commit together or not at all.
func (s *Service) Update(ctx context.Context, actor, id string, changes Changes) (*store.CaseRecord, error) {
	actor = actorOrAnonymous(actor)

	old, err := s.db.GetCase(ctx, id)
	if err != nil {
		return nil, err
	}

	type fieldDiff struct {
		name     string
		oldValue string
		newValue string
	}
	var diffs []fieldDiff

	updated := *old
	apply := func(name string, oldVal string, newVal *string, set func(string)) {
		if newVal == nil || *newVal == oldVal {
			return
		}
		diffs = append(diffs, fieldDiff{name: name, oldValue: oldVal, newValue: *newVal})
		set(*newVal)
	}

	apply("filed_on", old.FiledOn, changes.FiledOn, func(v string) { updated.FiledOn = v })
	apply("status", old.Status, changes.Status, func(v string) { updated.Status = v })
	apply("parties", old.Parties, changes.Parties, func(v string) { updated.Parties = v })
	apply("notes", old.Notes, changes.Notes, func(v string) { updated.Notes = v })

	if len(diffs) == 0 {
		return old, nil
	}

	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := s.db.UpdateCaseTx(ctx, tx, &updated); err != nil {
			return err
		}
		for _, d := range diffs {
			d := d
			if err := s.db.AppendChangeEntryTx(ctx, tx, &store.ChangeEntry{
				Actor:    actor,
				Action:   store.ChangeActionUpdate,
				Entity:   EntityCase,
				EntityID: id,
				Field:    &d.name,
				OldValue: &d.oldValue,
				NewValue: &d.newValue,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("updated case", "id", id, "fields", len(diffs), "actor", actor)
	return &updated, nil
}

// Delete soft-deletes a case record and writes one DELETE change entry with
// no field or values, in a single transaction.
func (s *Service) Delete(ctx context.Context, actor, id string) error {
	actor = actorOrAnonymous(actor)

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := s.db.SoftDeleteCaseTx(ctx, tx, id, s.now().UTC()); err != nil {
			return err
		}
		return s.db.AppendChangeEntryTx(ctx, tx, &store.ChangeEntry{
			Actor:    actor,
			Action:   store.ChangeActionDelete,
			Entity:   EntityCase,
			EntityID: id,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("deleted case", "id", id, "actor", actor)
	return nil
}

// Get returns a case record by id.
func (s *Service) Get(ctx context.Context, id string) (*store.CaseRecord, error) {
	return s.db.GetCase(ctx, id)
}

// List returns case records, excluding soft-deleted ones unless asked.
func (s *Service) List(ctx context.Context, includeDeleted bool, limit int) ([]*store.CaseRecord, error) {
	return s.db.ListCases(ctx, includeDeleted, limit)
}
