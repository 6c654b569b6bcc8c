package cleverpad_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/cleverpad"
	"github.com/aretw0/cleverpad/pkg/view"
)

// Example_guest writes notes without an account. Guest notes live in memory.
func Example_guest() {
	ws, err := cleverpad.New("", cleverpad.WithAdapter("memory"))
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()
	if err := ws.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer ws.Close(ctx)

	if err := ws.Guest(ctx); err != nil {
		log.Fatal(err)
	}
	if _, err := ws.Service.Create(ctx, "Groceries", "<ul><li>milk</li></ul>"); err != nil {
		log.Fatal(err)
	}
	if _, err := ws.Service.Create(ctx, "Plans", "<p>buy <strong>milk</strong> later</p>"); err != nil {
		log.Fatal(err)
	}
	// Edits are buffered; Save skips the debounce.
	if err := ws.Service.SetTitle("Weekend plans"); err != nil {
		log.Fatal(err)
	}
	if err := ws.Service.Save(ctx); err != nil {
		log.Fatal(err)
	}

	for _, n := range view.Filter(ws.Service.Notes(), "MILK") {
		fmt.Println(n.Title)
	}
	// Output:
	// Weekend plans
	// Groceries
}
