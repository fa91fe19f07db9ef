// Package state owns the hub's authoritative current state.
//
// The Registry holds the single Snapshot (actuator state plus latest
// sensor reading) behind a mutex, serialising all mutations while
// surrounding I/O stays concurrent. The in-memory snapshot is the source
// of truth for reads; the SnapshotRepository mirrors it to SQLite so the
// last known state survives restarts.
//
// The snapshot and the durable mirror are deliberately decoupled: mirror
// writes are asynchronous and never gate the mutation that triggered
// them. A crash between the in-memory update and the mirror write leaves
// the mirror one mutation behind, which the last-writer-wins overwrite
// repairs on the next mutation.
package state
