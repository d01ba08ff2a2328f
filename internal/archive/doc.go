// Package archive records attribute and state history alongside bus
// publication.
//
// The archive is a decorator over the device bus: pushes pass through
// unchanged, and successful value events and state transitions are
// mirrored into the time-series recorder. A failed push is not archived;
// a failed archive write never fails a push.
package archive
