// Package scheduler drives the claim-and-process polling loop. On a fixed
// delay it leases due tasks one at a time from the store, resolves the stage
// each one owes, delivers the notification through the gateway, and records
// the outcome with idempotent conditional writes. Multiple processes can run
// the same loop against the same database; the row-level claim in the store
// is the only coordination point.
package scheduler
