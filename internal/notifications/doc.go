// Package notifications broadcasts job state transitions to subscribers.
// Delivery is at-most-once with no persistence of missed events.
package notifications
