package core

import (
	"context"
	"fmt"
)

// ListRecords returns an entity's rows ordered by id, filtered to the view's
// customer when one is active.
func (s *Service) ListRecords(ctx context.Context, e *Entity, view View) ([]Record, error) {
	recs, err := s.store.ListRecords(ctx, e, view.Customer)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", e.Key, err)
	}
	return recs, nil
}

// CreateRecord validates and stores a new row. Rows created from a
// restricted view are stamped with its customer.
func (s *Service) CreateRecord(ctx context.Context, e *Entity, rec Record, view View) (Record, error) {
	rec.SetRecordID(0)
	if view.Restricted {
		rec.SetCustomer(view.Customer)
	}
	if err := s.prepare(e, rec); err != nil {
		return nil, err
	}
	if err := s.store.CreateRecord(ctx, e, rec); err != nil {
		return nil, fmt.Errorf("create %s: %w", e.Key, err)
	}
	return rec, nil
}

// UpdateRecord replaces all fields of an existing row.
func (s *Service) UpdateRecord(ctx context.Context, e *Entity, id int64, rec Record, view View) (Record, error) {
	existing, err := s.visibleRecord(ctx, e, id, view)
	if err != nil {
		return nil, err
	}

	rec.SetRecordID(existing.RecordID())
	if view.Restricted {
		rec.SetCustomer(view.Customer)
	}
	if err := s.prepare(e, rec); err != nil {
		return nil, err
	}
	if err := s.store.UpdateRecord(ctx, e, rec); err != nil {
		return nil, notFound(err, e.Label)
	}
	return rec, nil
}

// DeleteRecord removes one row.
func (s *Service) DeleteRecord(ctx context.Context, e *Entity, id int64, view View) error {
	if _, err := s.visibleRecord(ctx, e, id, view); err != nil {
		return err
	}
	if err := s.store.DeleteRecord(ctx, e, id); err != nil {
		return notFound(err, e.Label)
	}
	return nil
}

// visibleRecord loads a row and hides rows of other customers from
// restricted views.
func (s *Service) visibleRecord(ctx context.Context, e *Entity, id int64, view View) (Record, error) {
	rec, err := s.store.GetRecord(ctx, e, id)
	if err != nil {
		return nil, notFound(err, e.Label)
	}
	if view.Restricted && rec.Customer() != view.Customer {
		return nil, Errorf(KindNotFound, "%s not found", e.Label)
	}
	return rec, nil
}

func (s *Service) prepare(e *Entity, rec Record) error {
	if e.Prepare != nil {
		e.Prepare(rec, s.now().UTC())
	}
	return Validate(rec)
}
