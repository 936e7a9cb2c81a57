// Package model defines the data structures used throughout the application.
//
// Every persistent entity is owned by the backing store. The application
// never keeps an authoritative copy: these structs live for one request.
//
// Struct tags:
//   - `json:"..."` shapes API responses (camelCase, like the rest of the API)
//   - `db:"..."`   maps columns for sqlx scanning in the postgres repository
package model

import "time"

// Caption is a text item generated by the external captioning service.
// It is mutated only by moderation (visibility, delete) and by vote
// aggregation, which maintains LikeCount on the store side.
type Caption struct {
	ID         string    `json:"id"         db:"id"`
	Content    string    `json:"content"    db:"content"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_datetime_utc"`
	IsPublic   bool      `json:"isPublic"   db:"is_public"`
	IsFeatured bool      `json:"isFeatured" db:"is_featured"`
	LikeCount  int       `json:"likeCount"  db:"like_count"`
	ProfileID  string    `json:"profileId"  db:"profile_id"`
}

// GeneratedCaption is one element of the captioning API's generate-captions
// response. Order is preserved exactly as returned upstream.
type GeneratedCaption struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// CaptionVote is one directional vote. The store holds at most one row per
// (CaptionID, ProfileID); a second insert fails with a unique violation.
type CaptionVote struct {
	CaptionID string    `json:"captionId" db:"caption_id"`
	ProfileID string    `json:"profileId" db:"profile_id"`
	VoteValue int       `json:"voteValue" db:"vote_value"`
	CreatedAt time.Time `json:"createdAt" db:"created_datetime_utc"`
}

// RateFeed is the "captions needing a vote" view for one caller.
//
// VotedCount lets clients tell "you've voted on everything" apart from
// "there are no captions yet" when Captions is empty.
type RateFeed struct {
	Captions   []Caption `json:"captions"`
	VotedCount int       `json:"votedCount"`
}
