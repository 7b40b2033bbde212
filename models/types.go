package models

import (
	"time"

	"github.com/danielhkuo/elovote/leaderboard"
)

// Session status constants
const (
	SessionActive   = "active"
	SessionComplete = "complete"
)

// Role claim values carried in access tokens
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// Request types

type CreatePollRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Options     []string `json:"options" validate:"omitempty,max=100,dive,required,max=200"`
}

type AddOptionRequest struct {
	Label string `json:"label" validate:"required,min=1,max=200"`
}

type StartSessionRequest struct {
	PollID string `json:"poll_id" validate:"required,uuid"`
}

type SubmitMatchRequest struct {
	SessionID      string `json:"session_id" validate:"required,uuid"`
	WinnerOptionID string `json:"winner_option_id" validate:"required,uuid"`
	LoserOptionID  string `json:"loser_option_id" validate:"required,uuid,nefield=WinnerOptionID"`
	MatchIndex     *int   `json:"match_index" validate:"required,min=0"`
}

// Response types

type CreatePollResponse struct {
	Poll    Poll     `json:"poll"`
	Options []Option `json:"options"`
}

type AddOptionResponse struct {
	OptionID string `json:"option_id"`
}

type CompleteSessionResponse struct {
	SessionID   string             `json:"session_id"`
	PollID      string             `json:"poll_id"`
	Status      string             `json:"status"`
	CompletedAt time.Time          `json:"completed_at"`
	Scores      map[string]float64 `json:"scores"`
}

// Entries carry a numeric rank, or "NA" while a poll has no scores.
type LeaderboardResponse struct {
	PollID    string              `json:"poll_id"`
	SessionID string              `json:"session_id,omitempty"`
	Ranked    bool                `json:"ranked"`
	Total     int                 `json:"total"`
	ViewAll   bool                `json:"view_all"`
	Entries   []leaderboard.Entry `json:"entries"`
}

type PollPreviewResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	OptionCount    int       `json:"option_count"`
	RoundsPerVoter int       `json:"rounds_per_voter"`
	CompletedVotes int       `json:"completed_votes"`
	CompletedLabel string    `json:"completed_label"`
	CreatedAt      time.Time `json:"created_at"`
	CreatedAgo     string    `json:"created_ago"`
}

type MeResponse struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	IsAdmin       bool   `json:"is_admin"`
	EmailVerified bool   `json:"email_verified"`
}

type VerifyResponse struct {
	Valid     bool      `json:"valid"`
	Message   string    `json:"message"`
	Subject   string    `json:"sub"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Domain types

type Poll struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	CreatorEmail string    `json:"creator_email"`
	CreatedAt    time.Time `json:"created_at"`
}

type Option struct {
	ID       string `json:"id"`
	PollID   string `json:"poll_id"`
	Label    string `json:"label"`
	Position int    `json:"position"`
}

type PollWithOptions struct {
	Poll    Poll     `json:"poll"`
	Options []Option `json:"options"`
}

type VoterSession struct {
	ID              string     `json:"id"`
	PollID          string     `json:"poll_id"`
	VoterEmail      string     `json:"voter_email"`
	Status          string     `json:"status"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	MatchesDone     int        `json:"matches_done"`
	MatchesRequired int        `json:"matches_required"`
}

type MatchResult struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	Seq            int       `json:"seq"`
	WinnerOptionID string    `json:"winner_option_id"`
	LoserOptionID  string    `json:"loser_option_id"`
	MatchIndex     int       `json:"match_index"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
