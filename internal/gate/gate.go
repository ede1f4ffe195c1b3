// ABOUTME: Gatekeeper: the allow/deny decision function for room access
// ABOUTME: Every terminal verdict is appended to the access ledger with a reason code

package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gahenax/hotel-gateway/internal/auth"
	"github.com/gahenax/hotel-gateway/internal/store"
)

// Deny reasons, a closed taxonomy. ReasonExpired and ReasonRevoked appear in
// the ledger schema for completeness but the usable-key query filters such
// keys out before the plan check, so they surface as ReasonNoKey today.
const (
	ReasonSuccess   = "success"
	ReasonNoAuth    = "no_auth"
	ReasonNoKey     = "no_key"
	ReasonExpired   = "expired"
	ReasonWrongPlan = "wrong_plan"
	ReasonRevoked   = "revoked"
)

// ErrRoomNotFound is returned when an authenticated caller's slug matches
// no room. It is a 404-class outcome distinct from a denial and is never
// logged to the ledger: there is no room id to attribute the row to.
// Anonymous callers never see it; they are denied no_auth first.
var ErrRoomNotFound = errors.New("room not found")

// ErrStoreUnavailable wraps store-layer failures. It is an internal fault,
// never converted into a deny and never written to the ledger; doing either
// would corrupt the reason taxonomy.
var ErrStoreUnavailable = errors.New("store unavailable")

// Verdict is the outcome of one gate decision.
type Verdict struct {
	Allowed bool
	Reason  string
	Room    *store.Room
	Plan    string // qualifying plan on allow, empty otherwise
}

// RequestInfo carries the request attribution recorded in the ledger.
type RequestInfo struct {
	IP        string
	UserAgent string
}

// Gatekeeper evaluates room access for an identity and records every
// decision in the access ledger.
type Gatekeeper struct {
	rooms  store.RoomStore
	keys   store.KeyStore
	ledger store.EntryLogStore
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Gatekeeper over the given stores.
func New(rooms store.RoomStore, keys store.KeyStore, ledger store.EntryLogStore) *Gatekeeper {
	return &Gatekeeper{
		rooms:  rooms,
		keys:   keys,
		ledger: ledger,
		logger: slog.Default().With("component", "gate"),
		now:    time.Now,
	}
}

// Decide evaluates access for the identity against the room slug. Rules are
// applied in strict order and the first match wins:
//
//  1. anonymous caller        -> deny no_auth
//  2. unknown slug            -> ErrRoomNotFound (not logged)
//  3. no usable key           -> deny no_key
//  4. no usable key's plan in the room's policy -> deny wrong_plan
//  5. otherwise               -> allow success with the qualifying plan
//
// Each terminal outcome from 1, 3, 4 and 5 appends exactly one ledger row,
// with one exception: an anonymous caller naming an unknown slug is denied
// no_auth without a ledger row, since there is no room id to attribute the
// row to. The auth check winning over the slug check also means slug
// existence is never revealed to unauthenticated callers.
// A store failure anywhere returns ErrStoreUnavailable with no ledger write.
func (g *Gatekeeper) Decide(ctx context.Context, id *auth.Identity, slug string, req RequestInfo) (*Verdict, error) {
	room, err := g.rooms.GetRoomBySlug(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		if id == nil {
			return &Verdict{Allowed: false, Reason: ReasonNoAuth}, nil
		}
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if id == nil {
		return g.record(ctx, nil, room, &Verdict{Allowed: false, Reason: ReasonNoAuth, Room: room}, req)
	}

	keys, err := g.keys.FindUsableKeys(ctx, id.GuestID, room.ID, g.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if len(keys) == 0 {
		return g.record(ctx, id, room, &Verdict{Allowed: false, Reason: ReasonNoKey, Room: room}, req)
	}

	for _, k := range keys {
		if room.AllowsPlan(k.Plan) {
			return g.record(ctx, id, room, &Verdict{Allowed: true, Reason: ReasonSuccess, Room: room, Plan: k.Plan}, req)
		}
	}

	return g.record(ctx, id, room, &Verdict{Allowed: false, Reason: ReasonWrongPlan, Room: room}, req)
}

// record appends the verdict to the ledger and returns it. A ledger write
// failure is a store fault, not a deny: the verdict is discarded and the
// caller sees ErrStoreUnavailable.
func (g *Gatekeeper) record(ctx context.Context, id *auth.Identity, room *store.Room, v *Verdict, req RequestInfo) (*Verdict, error) {
	entry := &store.EntryLogEntry{
		RoomID:    room.ID,
		Action:    store.EntryActionEnterAttempt,
		Allow:     v.Allowed,
		Reason:    v.Reason,
		IP:        req.IP,
		UserAgent: req.UserAgent,
	}
	if id != nil {
		entry.GuestID = &id.GuestID
	}

	if err := g.ledger.AppendEntryLog(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	g.logger.Info("gate decision",
		"room", room.Slug,
		"allow", v.Allowed,
		"reason", v.Reason,
	)
	return v, nil
}

// Door states derived from the same usable-key lookup Decide uses.
const (
	DoorUnlocked = "unlocked"
	DoorLocked   = "locked"
)

// DoorState computes whether the identity could enter the room right now,
// without writing the ledger. Anonymous callers always see a locked door.
func (g *Gatekeeper) DoorState(ctx context.Context, id *auth.Identity, room *store.Room) (string, error) {
	if id == nil {
		return DoorLocked, nil
	}

	keys, err := g.keys.FindUsableKeys(ctx, id.GuestID, room.ID, g.now())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	for _, k := range keys {
		if room.AllowsPlan(k.Plan) {
			return DoorUnlocked, nil
		}
	}
	return DoorLocked, nil
}
