// Package journal persists one record per settled dispatch call to SQLite.
//
// This package manages:
//   - Opening and migrating the journal database
//   - Recording dispatch outcomes (dispatch.Observer implementation)
//   - Querying recorded outcomes for inspection and debugging
//
// # Architecture
//
// The journal is an observability sink, not a delivery mechanism: rows are
// written best-effort after a dispatch has already settled, and a failed
// insert is logged and dropped. Handler behavior never depends on the
// journal.
//
// Writes happen on the delivering goroutine between dispatches, bounded by
// a short statement timeout so a wedged disk cannot stall message flow for
// long.
//
// # Usage
//
//	j, err := journal.Open(cfg.Journal)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer j.Close()
//	if err := j.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	bridge, _ := dispatch.New(svc, rt, dispatch.WithObserver(j))
package journal
