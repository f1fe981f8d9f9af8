// Package registration implements the device registration lifecycle.
//
// A client machine registers its computer_id once and polls for its status.
// Every registration starts Pending and is moved exactly once by an admin to
// Approved or Rejected; both are terminal. The transition is a single
// conditional UPDATE guarded on the current status, so concurrent decisions
// on the same registration cannot both win.
//
// Registration is idempotent: re-registering a known computer_id is
// acknowledged without creating a duplicate. The UNIQUE constraint on
// computer_id closes the race between concurrent first-time registrations;
// the loser's constraint violation is translated into the same
// already-registered outcome.
//
// After every successful mutation the service emits a change event to its
// notifiers (WebSocket hub, optionally MQTT). Notification is fire and
// forget: a slow or failed notifier never blocks or fails the mutation.
package registration
