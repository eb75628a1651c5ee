// Package htmlrms is the composition root for the HTML record manager.
//
// It wires the record store (pkg/core), the snapshot adapter (pkg/snapshot)
// and the import pipeline (pkg/normalize, pkg/merge) to one of the slot
// backends under pkg/adapters, following a hexagonal layout: the domain
// never imports a backend.
//
// A workspace keeps "products": named HTML snippets with a default body and
// any number of named variants. Every mutation rewrites the whole collection
// to the slot, so the slot is always a disposable mirror of memory.
//
// Usage:
//
//	ws, err := htmlrms.Open(ctx, "./shop", htmlrms.WithAutoInit(true))
//	if err != nil {
//		return err
//	}
//	defer ws.Close()
//
//	r, err := ws.Store.Create(ctx)
//	err = ws.Store.SetContent(ctx, r.ID, "mobile", "<div>...</div>")
//
//	// Imports are planned first and applied once collisions are confirmed.
//	plan, err := ws.Importer.Plan(ctx, payload, htmlrms.FormatJSON)
//	res, err := ws.Importer.Apply(ctx, plan, userConfirmed)
package htmlrms
