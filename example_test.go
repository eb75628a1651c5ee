package htmlrms_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/htmlrms"
)

// Example_basic creates a record in an in-memory workspace and reads it back.
func Example_basic() {
	ctx := context.Background()
	ws, err := htmlrms.Open(ctx, "", htmlrms.WithAdapter("memory"))
	if err != nil {
		log.Fatal(err)
	}
	defer ws.Close()

	r, err := ws.Store.Create(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if err := ws.Store.SetContent(ctx, r.ID, "mobile", "<p>small</p>"); err != nil {
		log.Fatal(err)
	}

	content, _ := ws.Store.Content(r.ID, "mobile")
	fmt.Println(content)
	// Output:
	// <p>small</p>
}

// Example_import plans an import that overwrites a record and confirms it.
func Example_import() {
	ctx := context.Background()
	ws, err := htmlrms.Open(ctx, "", htmlrms.WithAdapter("memory"))
	if err != nil {
		log.Fatal(err)
	}

	if _, err := ws.Importer.Import(ctx, []byte(`[{"id":"a"},{"id":"b"}]`), htmlrms.FormatJSON, nil); err != nil {
		log.Fatal(err)
	}

	plan, err := ws.Importer.Plan(ctx, []byte(`{"version":"2","products":[{"id":"b","html":"new"},{"id":"c"}]}`), htmlrms.FormatJSON)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("collisions:", plan.Collisions)

	res, err := ws.Importer.Apply(ctx, plan, true)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Message())
	for _, r := range ws.Store.List() {
		fmt.Println(r.ID)
	}
	// Output:
	// collisions: [b]
	// 2 records imported
	// a
	// b
	// c
}
