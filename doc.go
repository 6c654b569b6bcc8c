// Package cleverpad is the composition root of the CleverPad note client.
//
// A Workspace follows the persisted session and picks the matching note
// repository: the REST backend for accounts, an in-memory store for guests.
// Edits go through a draft controller that debounces autosave, keeps at most
// one save in flight per note and never lets a late answer touch another
// note. Every mutation is applied locally first and then reconciled with a
// full listing from the repository.
//
// Usage:
//
//	ws, err := cleverpad.New("",
//		cleverpad.WithBaseURL("http://localhost:8000"),
//		cleverpad.WithLogger(logger),
//	)
//	if err := ws.Start(ctx); err != nil { ... }
//	defer ws.Close(ctx)
//
//	if _, err := ws.Login(ctx, "ana@example.com", password); err != nil { ... }
//	note, err := ws.Service.Create(ctx, "", "<p>hello</p>")
//
// Import and export live in pkg/transfer, filtering and statistics in
// pkg/view.
package cleverpad
