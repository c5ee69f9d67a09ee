// Package live is a minimal push transport for Reflow components. Each
// WebSocket connection gets its own session with a mounted runtime.Root;
// client events are dispatched to registered handlers and every resulting
// re-render is pushed back as an HTML frame. State lives entirely on the
// server; the browser side is a thin inline client that swaps innerHTML
// and forwards DOM events.
package live
