// Package core provides the business logic of the control tower.
//
// This package holds all domain logic independent of any transport or
// storage engine. It is used by the HTTP handlers, the import command and
// tests without modification.
//
// # Architecture
//
// The package is organized around a few key concepts:
//
//   - Entities: the seven flat record types (program tasks, infra tasks and
//     the five TA pipeline entities) and their storage descriptors.
//   - Trackers: registered via [RegisterTracker]. Each tracker describes the
//     sheets of an Excel upload and the entity each sheet replaces.
//   - Service: the entry point for replaces, CRUD, TA reporting, auth and
//     ingestion history.
//   - Store: the persistence contract implemented by internal/store.
//
// # Tracker Registry
//
// Trackers are registered at init time by internal/core/trackers:
//
//	core.RegisterTracker(core.Tracker{
//	    Key:     "infra",
//	    Label:   "Infra Setup Tracker",
//	    Message: "Infra Excel replaced successfully",
//	    Scoped:  true,
//	    Sheets:  []core.TrackerSheet{{Entity: core.InfraTasks, Spec: infraSheet}},
//	})
//
// # Replace
//
// [Service.Replace] runs one upload through the pipeline:
//
//  1. Wait for a free upload slot and sniff the file type
//  2. Archive the workbook (best effort)
//  3. Read and map every sheet of the tracker
//  4. Resolve the customer scope from the full customer set
//  5. Delete and insert every entity in a single store transaction
//
// Rejections (missing rows, scope mismatch) happen before step 5, so a
// rejected upload never touches stored data.
//
// # Error Handling
//
// Service errors carry a [Kind] that transports map to status codes, see
// [KindOf]. Technical errors are mapped to user-friendly messages with
// support codes by [MapError].
package core
