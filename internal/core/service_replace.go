package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/JonMunkholm/controltower/internal/ingest"
	"github.com/JonMunkholm/controltower/internal/logging"
)

// Replace runs one workbook through its tracker's pipeline and replaces the
// stored rows in a single transaction.
//
// Every rejection (no file, empty sheet, customer mismatch) happens before
// the store is touched. Successful and rejected attempts are recorded in the
// ingestion history.
func (s *Service) Replace(ctx context.Context, req ReplaceRequest) (*ReplaceResult, error) {
	tracker, ok := TrackerByKey(req.Tracker)
	if !ok {
		return nil, Errorf(KindNotFound, "unknown tracker: %s", req.Tracker)
	}
	if len(req.Data) == 0 {
		return nil, ingest.Invalid("No file uploaded")
	}

	log := logging.WithFields(ctx, "tracker", tracker.Key, "file", req.FileName)

	if err := s.limiter.Acquire(ctx); err != nil {
		log.Warn("upload slot unavailable", "error", err)
		return nil, err
	}
	defer s.limiter.Release()

	s.metrics.trackActive(1)
	defer s.metrics.trackActive(-1)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.UploadTimeout)
	defer cancel()

	start := time.Now()
	runID := uuid.New()

	res, err := s.replace(ctx, log, &tracker, req, runID)

	outcome := OutcomeSuccess
	switch {
	case err == nil:
	case IsValidation(err) || KindOf(err) == KindForbidden:
		outcome = OutcomeRejected
	default:
		outcome = OutcomeFailed
	}
	s.metrics.observeRun(tracker.Key, outcome, time.Since(start))

	run := IngestRun{
		ID:        runID,
		Tracker:   tracker.Key,
		FileName:  req.FileName,
		Scope:     "none",
		Outcome:   outcome,
		UserEmail: req.Actor,
		Customer:  req.View.Customer,
		IPAddress: GetIPAddressFromContext(ctx),
		CreatedAt: s.now().UTC(),
	}
	if err != nil {
		run.Message = err.Error()
		log.Info("replace rejected", "outcome", outcome, "error", err)
	} else {
		run.Scope = res.Scope.String()
		run.Deleted = res.Deleted()
		run.Inserted = res.Inserted()
		run.Message = tracker.Message
		if res.Scope.Customer != "" {
			run.Customer = res.Scope.Customer
		}
		s.metrics.observeCounts(tracker.Key, res.Counts)
	}
	s.recordRun(context.WithoutCancel(ctx), run)

	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) replace(ctx context.Context, log *slog.Logger, tracker *Tracker, req ReplaceRequest, runID uuid.UUID) (*ReplaceResult, error) {
	if err := checkWorkbook(req.Data); err != nil {
		return nil, err
	}

	now := s.now()
	s.archive(ctx, log, tracker.Key, now, runID, req.Data)

	wb, err := ingest.OpenWorkbook(req.Data)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	res := &ReplaceResult{Tracker: tracker, RunID: runID}
	batches := make([]Batch, 0, len(tracker.Sheets))
	var customers []string
	total := 0

	for i, sh := range tracker.Sheets {
		sheet, err := ingest.ReadSheet(wb, sh.Spec, now)
		if err != nil {
			return nil, err
		}
		log.Debug("sheet read",
			"entity", sh.Entity.Key,
			"sheet", sheet.Sheet,
			"found", sheet.Found,
			"rows_read", sheet.RowsRead,
			"records", len(sheet.Records),
		)
		if i == 0 {
			res.RowsRead = sheet.RowsRead
		}

		if sheet.Found && len(sheet.Missing) > 0 {
			log.Warn("columns not found, using defaults", "entity", sh.Entity.Key, "fields", sheet.Missing)
			if res.Missing == nil {
				res.Missing = make(map[string][]string)
			}
			res.Missing[sh.Entity.Key] = sheet.Missing
		}
		for _, a := range sheet.Ambiguities {
			log.Warn("ambiguous column match",
				"sheet", a.Sheet,
				"field", a.Field,
				"headers", a.Headers,
				"chosen", a.Chosen,
			)
		}
		res.Warnings = append(res.Warnings, sheet.Ambiguities...)

		records := make([]Record, 0, len(sheet.Records))
		for _, r := range sheet.Records {
			rec, ok := r.(Record)
			if !ok {
				return nil, fmt.Errorf("sheet %s mapped %T, not a record", sh.Entity.Key, r)
			}
			records = append(records, rec)
			customers = append(customers, rec.Customer())
		}
		total += len(records)

		batches = append(batches, Batch{Entity: sh.Entity, Records: records, Unscoped: !tracker.Scoped})
	}

	if total == 0 && tracker.NoRowsError != "" {
		return nil, ingest.Invalid("%s", tracker.NoRowsError)
	}

	scope := ingest.ReplaceAll
	if tracker.Scoped {
		scope, err = ingest.ResolveScope(customers, req.View.Customer)
		if err != nil {
			return nil, err
		}
	} else if req.View.Restricted {
		return nil, Errorf(KindForbidden, "Customer accounts are not allowed to replace the %s", tracker.Label)
	}
	res.Scope = scope
	log.Debug("scope resolved", "scope", scope.String(), "inferred", scope.Inferred, "records", total)

	counts, err := s.store.Replace(ctx, scope, batches)
	if err != nil {
		log.Error("replace transaction failed", "error", err)
		return nil, fmt.Errorf("replace %s: %w", tracker.Key, err)
	}
	res.Counts = counts

	log.Info("replace complete",
		"scope", scope.String(),
		"deleted", res.Deleted(),
		"inserted", res.Inserted(),
		"warnings", len(res.Warnings),
	)
	return res, nil
}

// checkWorkbook rejects uploads that are not zip-based Office documents.
// Legacy .xls files cannot be read and are rejected here too.
func checkWorkbook(data []byte) error {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return nil
		}
	}
	return ingest.Invalid("Uploaded file is not an Excel workbook (.xlsx)")
}

// archive stores the raw workbook. Failures are logged and never fail the
// upload.
func (s *Service) archive(ctx context.Context, log *slog.Logger, tracker string, now time.Time, id uuid.UUID, data []byte) {
	if s.archiver == nil {
		return
	}
	loc, err := s.archiver.Put(ctx, ArchiveKey(tracker, now, id), data)
	if err != nil {
		log.Warn("workbook archive failed", "error", err)
		return
	}
	log.Debug("workbook archived", "location", loc)
}
