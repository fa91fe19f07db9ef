// Package event provides the append-only event log for access-control
// and input occurrences.
//
// Three independent categories are kept in one table: RFID tag scans,
// keypad PIN entries, and face-recognition results. Each category is an
// ordered history that only ever grows; the hub records what devices
// report and never rewrites it.
//
// Queries read newest-first. Two events stamped in the same second are
// disambiguated by insertion order, so a burst of scans from one reader
// always comes back in the order the hub received them.
package event
