// Package tools exposes the speaker test, the sound meter and the hearing
// test as plain commands and plain data for a presentation layer (the wasm
// bridge, the terminal UI and the websocket server). Each tool owns its
// own audio session.
package tools
