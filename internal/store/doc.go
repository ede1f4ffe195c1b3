// Package store provides persistent storage for hotel-gateway using SQLite.
//
// # Architecture
//
// The package uses an interface-driven layout with specialized interfaces:
//
//   - GuestStore: registered guest identities and roles
//   - RoomStore: the protected room catalog and its access policies
//   - KeyStore: time-bounded, revocable room keys
//   - EntryLogStore: the append-only access decision ledger
//   - ChangeLogStore: the append-only field-level change capture log
//   - CaseStore: legal case records with soft deletion
//
// SQLiteStore implements all of them in a single struct, allowing easy
// composition while maintaining clear interface boundaries.
//
// # Data Models
//
//   - Guest: identity with email, role and bcrypt secret hash
//   - Room: protected unit; AllowedPlans is the access policy
//   - RoomKey: a grant of one guest to one room under a plan, with an
//     issue and expiry time; revocable, never reactivated
//   - EntryLogEntry: one immutable gate decision with a reason code
//   - ChangeEntry: one immutable mutation record for a monitored entity
//   - CaseRecord: a case file; deleting it sets DeletedAt, the row stays
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Timestamps are stored as RFC3339 UTC text. String lists (tags, allowed
// plans) are stored as JSON text columns.
//
// # Transactions
//
// Case mutations and their change capture rows must commit atomically.
// WithTx runs a function inside one transaction and the *Tx method variants
// (CreateCaseTx, UpdateCaseTx, SoftDeleteCaseTx, AppendChangeEntryTx)
// operate on it.
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: requested entity does not exist
//   - ErrDuplicateGuest, ErrDuplicateRoom, ErrDuplicateCase: unique
//     constraint collisions surfaced as sentinel errors
//
// All methods accept context.Context for cancellation support.
package store
