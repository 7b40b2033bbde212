// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

// Capability names an action guarded by ownership.
type Capability int

const (
	ManagePoll Capability = iota
	ViewPollLeaderboard
	ViewSession
	VoteInSession
	ViewSessionLeaderboard
)

func (c Capability) String() string {
	switch c {
	case ManagePoll:
		return "manage_poll"
	case ViewPollLeaderboard:
		return "view_poll_leaderboard"
	case ViewSession:
		return "view_session"
	case VoteInSession:
		return "vote_in_session"
	case ViewSessionLeaderboard:
		return "view_session_leaderboard"
	default:
		return "unknown"
	}
}

// Relation is what the caller is to the resource being accessed.
type Relation struct {
	Creator      bool // created the poll
	SessionOwner bool // owns the session
	HasVoted     bool // completed a session on the poll
}

// Allowed reports whether id may exercise c given rel.
//
// Admins may do everything except vote in someone else's session.
func Allowed(id Identity, c Capability, rel Relation) bool {
	switch c {
	case ManagePoll:
		return rel.Creator || id.IsAdmin()
	case ViewPollLeaderboard:
		return rel.Creator || rel.HasVoted || id.IsAdmin()
	case ViewSession, ViewSessionLeaderboard:
		return rel.SessionOwner || id.IsAdmin()
	case VoteInSession:
		return rel.SessionOwner
	default:
		return false
	}
}
