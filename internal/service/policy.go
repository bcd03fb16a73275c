package service

// Policy decides whether an actor may mutate a resource owned by
// ownerID. Policies are pure functions of (actor, owner); routes pick a
// named policy instead of generating permission classes dynamically.
type Policy func(actorID int64, ownerID *int64) bool

// OwnerOnly permits mutation only by the resource owner. Anonymous
// resources (nil owner) are immutable.
var OwnerOnly Policy = func(actorID int64, ownerID *int64) bool {
	return ownerID != nil && actorID == *ownerID
}

// NotOwner permits the action for everyone except the owner. Used by
// the vote ledger to reject self-votes.
var NotOwner Policy = func(actorID int64, ownerID *int64) bool {
	return ownerID == nil || actorID != *ownerID
}
