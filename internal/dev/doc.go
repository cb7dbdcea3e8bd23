// Package dev serves a live preview of a manifest.
//
// A Session owns the reactive runtime and drives it from a single loop
// goroutine. It loads the manifest, mounts the root component and
// re-serializes the document after every loop turn. The Server exposes
// the document over HTTP, streams renders to browsers over a WebSocket
// and accepts state writes and events from them. A Watcher reloads the
// manifest when the file changes.
//
// # Preview Protocol
//
// The browser connects to /_lumen/ws. Messages are JSON-encoded:
//
//	{"type": "render", "html": "...", "version": 3}     // server: new document
//	{"type": "error", "error": "..."}                   // server: failed request or reload
//	{"type": "set", "name": "count", "value": 2}        // client: assign root state
//	{"type": "event", "selector": "button", "event": "click"} // client: dispatch an event
package dev
