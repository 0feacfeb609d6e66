package models

import "errors"

// SetName identifies one of the named integer sets kept in the store.
type SetName string

const (
	SetSudo             SetName = "sudo"
	SetBlocked          SetName = "blocked"
	SetGbanned          SetName = "gbanned"
	SetAuthChats        SetName = "authchats"
	SetBlacklistedChats SetName = "blchats"
)

// AllSets lists every known set in a stable order.
var AllSets = []SetName{SetSudo, SetBlocked, SetGbanned, SetAuthChats, SetBlacklistedChats}

var (
	ErrNotMember        = errors.New("value is not a member of the set")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrUnknownBackend   = errors.New("unknown backend")
	ErrUnknownSet       = errors.New("unknown set")
)

// Collection returns the document collection backing the set.
func (s SetName) Collection() string {
	switch s {
	case SetSudo:
		return "sudousers"
	case SetBlocked:
		return "blocked_users"
	case SetGbanned:
		return "gban_db"
	case SetAuthChats:
		return "authchats"
	case SetBlacklistedChats:
		return "bl_chats"
	default:
		return ""
	}
}

// Field is the array field that holds the member ids.
func (s SetName) Field() string {
	if s.HoldsChats() {
		return "chat_ids"
	}
	return "user_ids"
}

// HoldsChats reports whether members are chat ids rather than user ids.
func (s SetName) HoldsChats() bool {
	return s == SetAuthChats || s == SetBlacklistedChats
}

func (s SetName) Valid() bool {
	return s.Collection() != ""
}
