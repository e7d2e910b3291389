// Package snapshot persists consistent register values to pebble and
// restores them on startup.
//
// Snapshot is intentionally decoupled from the register protocol. It only
// ever sees values through a register.Reader, so a slow or failed save
// never holds up the writer.
package snapshot
