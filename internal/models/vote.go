package models

import (
	"time"

	"github.com/google/uuid"
)

// TargetType names the kind of content a vote applies to.
type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
)

// Valid reports whether t is a known target type.
func (t TargetType) Valid() bool {
	return t == TargetPost || t == TargetComment
}

// Direction is a voter's stance on a piece of content. DirectionNone means
// the voter is in neither set.
type Direction string

const (
	DirectionNone Direction = ""
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Valid reports whether d can be cast. DirectionNone cannot.
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// Value is the contribution of d to a net score.
func (d Direction) Value() int {
	switch d {
	case DirectionUp:
		return 1
	case DirectionDown:
		return -1
	default:
		return 0
	}
}

// Vote is one row of the vote ledger. The unique index guarantees a voter
// holds at most one direction per target.
type Vote struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	TargetType TargetType `gorm:"type:varchar(16);not null;uniqueIndex:idx_votes_target_voter,priority:1;column:target_type" json:"target_type"`
	TargetID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_votes_target_voter,priority:2;column:target_id" json:"target_id"`
	VoterID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_votes_target_voter,priority:3;index;column:voter_id" json:"voter_id"`
	Direction  Direction  `gorm:"type:varchar(8);not null;column:direction" json:"direction"`
	CreatedAt  time.Time  `gorm:"not null;column:created_at" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null;column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for Vote
func (Vote) TableName() string {
	return "votes"
}
