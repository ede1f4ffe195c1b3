// ABOUTME: Store interfaces and data types for hotel-gateway persistence
// ABOUTME: Defines Guest, Room, RoomKey, EntryLogEntry, ChangeEntry, CaseRecord and store contracts

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateGuest is returned when creating a guest with an email that already exists
var ErrDuplicateGuest = errors.New("guest already exists")

// ErrDuplicateRoom is returned when creating a room with a slug that already exists
var ErrDuplicateRoom = errors.New("room already exists")

// ErrDuplicateCase is returned when creating a case record with a number that already exists
var ErrDuplicateCase = errors.New("case record already exists")

// Guest roles. Roles form a closed set; the only privileged one is RoleAdmin.
const (
	RoleViewer   = "viewer"
	RoleCustomer = "customer"
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// ValidRoles lists every role a guest may hold.
var ValidRoles = []string{RoleViewer, RoleCustomer, RoleOperator, RoleAdmin}

// Guest is an identity record owned by the credential store.
type Guest struct {
	ID           string
	Email        string
	Name         string
	Role         string // viewer, customer, operator, admin
	PasswordHash string // bcrypt hash of the check-in secret
	CreatedAt    time.Time
}

// Room statuses.
const (
	RoomStatusActive = "active"
	RoomStatusHidden = "hidden"
)

// Room is a protected unit. AllowedPlans is the access policy: the set of
// key plans that may unlock it. Everything else is display metadata.
type Room struct {
	ID           string
	Slug         string
	Name         string
	Floor        int
	Type         string
	Tagline      string
	DescShort    string
	DescLong     string
	Tags         []string
	AllowedPlans []string
	WebURL       string // destination handed back on an allowed enter
	Status       string
	CreatedAt    time.Time
}

// AllowsPlan reports whether the room's access policy admits the given plan.
func (r *Room) AllowsPlan(plan string) bool {
	for _, p := range r.AllowedPlans {
		if p == plan {
			return true
		}
	}
	return false
}

// RoomKey statuses. KeyStatusExpired exists in the taxonomy but is never
// written by any operation: expiry is a derived, read-time condition
// (expires_at <= now), distinct from the stored status.
const (
	KeyStatusActive  = "active"
	KeyStatusExpired = "expired"
	KeyStatusRevoked = "revoked"
)

// RoomKey is a time-bounded, revocable grant of a guest to a room under a plan.
// Multiple concurrently-active keys for the same (guest, room) pair are
// permitted; nothing deduplicates or supersedes them.
type RoomKey struct {
	ID        string
	GuestID   string
	RoomID    string
	Plan      string
	Status    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// EntryLogEntry is one appended gate decision. GuestID is nil for
// unauthenticated attempts. Rows are never updated or deleted.
type EntryLogEntry struct {
	ID        string
	GuestID   *string
	RoomID    string
	Action    string
	Allow     bool
	Reason    string
	IP        string
	UserAgent string
	Timestamp time.Time
}

// EntryLogFilter specifies filtering options for listing entry log rows.
type EntryLogFilter struct {
	RoomID  *string
	GuestID *string
	Allow   *bool
	Since   *time.Time
	Limit   int // default 100, max 1000
}

// Change audit actions.
const (
	ChangeActionCreate = "CREATE"
	ChangeActionUpdate = "UPDATE"
	ChangeActionDelete = "DELETE"
)

// ChangeEntry is one appended field-level mutation record for a monitored
// entity. For CREATE the full initial state is serialized into NewValue and
// Field is empty. For DELETE only actor, action and entity id are recorded.
type ChangeEntry struct {
	ID        string
	Actor     string
	Action    string
	Entity    string
	EntityID  string
	Field     *string
	OldValue  *string
	NewValue  *string
	Timestamp time.Time
}

// ChangeLogFilter specifies filtering options for listing change entries.
type ChangeLogFilter struct {
	EntityID *string
	Action   *string
	Limit    int // default 100, max 1000
}

// CaseRecord is a legal case file, the monitored entity driving the change
// capture. Deletion is soft: DeletedAt is set, the row stays.
type CaseRecord struct {
	ID         string
	CaseNumber string
	FiledOn    string // ISO date, no time component
	Status     string
	Parties    string
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// GuestStore defines guest persistence.
type GuestStore interface {
	CreateGuest(ctx context.Context, g *Guest) error
	GetGuest(ctx context.Context, id string) (*Guest, error)
	GetGuestByEmail(ctx context.Context, email string) (*Guest, error)
	UpdateGuestRole(ctx context.Context, id, role string) error
	CountGuests(ctx context.Context) (int, error)
}

// RoomStore defines room catalog persistence.
type RoomStore interface {
	CreateRoom(ctx context.Context, r *Room) error
	GetRoomBySlug(ctx context.Context, slug string) (*Room, error)
	ListActiveRooms(ctx context.Context) ([]*Room, error)
	UpdateRoomPolicy(ctx context.Context, id string, allowedPlans []string) error
}

// KeyStore defines room key persistence. FindUsableKeys is the one query the
// gatekeeper and door-state lookup share: status=active AND expires_at > now.
type KeyStore interface {
	CreateKey(ctx context.Context, k *RoomKey) error
	GetKey(ctx context.Context, id string) (*RoomKey, error)
	RevokeKey(ctx context.Context, id string, at time.Time) error
	ListKeysByGuest(ctx context.Context, guestID string) ([]*RoomKey, error)
	FindUsableKeys(ctx context.Context, guestID, roomID string, now time.Time) ([]*RoomKey, error)
}

// EntryLogStore defines the append-only access ledger.
type EntryLogStore interface {
	AppendEntryLog(ctx context.Context, e *EntryLogEntry) error
	ListEntryLog(ctx context.Context, f EntryLogFilter) ([]*EntryLogEntry, error)
}

// ChangeLogStore defines the append-only change capture log. The Tx variant
// exists so a mutation and its audit rows commit together.
type ChangeLogStore interface {
	AppendChangeEntryTx(ctx context.Context, tx *sql.Tx, e *ChangeEntry) error
	ListChangeLog(ctx context.Context, f ChangeLogFilter) ([]*ChangeEntry, error)
}

// CaseStore defines case record persistence. Mutations run inside a caller
// supplied transaction so the change capture can share it.
type CaseStore interface {
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
	CreateCaseTx(ctx context.Context, tx *sql.Tx, c *CaseRecord) error
	GetCase(ctx context.Context, id string) (*CaseRecord, error)
	ListCases(ctx context.Context, includeDeleted bool, limit int) ([]*CaseRecord, error)
	UpdateCaseTx(ctx context.Context, tx *sql.Tx, c *CaseRecord) error
	SoftDeleteCaseTx(ctx context.Context, tx *sql.Tx, id string, at time.Time) error
}
