// Package gate implements the room access decision.
//
// Decide is the single authority on whether an identity may enter a room.
// Rules apply in strict order: anonymous callers are denied no_auth, an
// unknown slug named by an authenticated guest is a not-found error rather
// than a denial, a guest with no usable key is denied no_key, a guest whose
// usable keys all carry plans outside the room's policy is denied
// wrong_plan, and otherwise the entry is allowed. A key is usable when its
// stored status is active and its expiry lies in the future; revoked and
// lapsed keys are invisible to the decision, not distinct denial reasons.
//
// Every terminal verdict appends exactly one row to the access ledger.
// Store failures are reported as ErrStoreUnavailable and never logged or
// converted into denials.
package gate
