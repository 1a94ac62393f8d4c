package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// User roles
const (
	TypeUser  = "USER"
	TypeAdmin = "ADMIN"
)

// Reaction types. Positive types are the ones that can form a match.
const (
	ReactionLike    = "LIKE"
	ReactionLove    = "LOVE"
	ReactionDislike = "DISLIKE"
)

// KnownReactionType reports whether t is a recognized reaction type.
func KnownReactionType(t string) bool {
	switch t {
	case ReactionLike, ReactionLove, ReactionDislike:
		return true
	}
	return false
}

// PositiveReaction reports whether t counts toward a match.
func PositiveReaction(t string) bool {
	return t == ReactionLike || t == ReactionLove
}

// PhotoList is an ordered list of relative photo paths stored as a JSON
// text column. Insertion order is display order.
type PhotoList []string

func (p PhotoList) Value() (driver.Value, error) {
	if p == nil {
		p = PhotoList{}
	}
	b, err := json.Marshal([]string(p))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal photo list: %w", err)
	}
	return string(b), nil
}

func (p *PhotoList) Scan(src any) error {
	if src == nil {
		*p = PhotoList{}
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported photo list source type %T", src)
	}
	if len(b) == 0 {
		*p = PhotoList{}
		return nil
	}
	return json.Unmarshal(b, (*[]string)(p))
}

// User table
type User struct {
	ID           uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	State        bool       `gorm:"default:true" json:"state"`
	Name         string     `gorm:"size:128;not null" json:"name"`
	Birthdate    *time.Time `json:"birthdate,omitempty"`
	Description  string     `gorm:"size:1024" json:"description"`
	Phone        string     `gorm:"uniqueIndex;size:10;not null" json:"phone"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Type         string     `gorm:"size:16;not null;default:USER" json:"type"`
	Gender       string     `gorm:"size:16" json:"gender"`
	Photos       PhotoList  `gorm:"type:text" json:"photos"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Reaction represents a directed, typed signal from sender to receiver.
//
// Composite PK: (SenderID, ReceiverID)
//   - Ensures a single row per ordered pair (overwrite guarantee).
//
// Indexes:
//   - idx_receiver_sender(receiver_id, sender_id)
//     Optimizes the reverse-edge lookup used for mutual detection.
type Reaction struct {
	SenderID   uint64    `gorm:"primaryKey;column:sender_id" json:"senderId"`
	ReceiverID uint64    `gorm:"primaryKey;column:receiver_id;index:idx_receiver_sender,priority:1" json:"receiverId"`
	Type       string    `gorm:"size:16;not null" json:"reactionType"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Match is the undirected record for a mutually positive pair.
//
// Invariant: User1ID < User2ID (canonical order). The composite unique
// index makes the pair insert race-safe: concurrent double-triggers
// collapse into a single row via ON CONFLICT DO NOTHING.
type Match struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	User1ID       uint64    `gorm:"uniqueIndex:idx_match_pair,priority:1;not null" json:"user1Id"`
	User2ID       uint64    `gorm:"uniqueIndex:idx_match_pair,priority:2;not null" json:"user2Id"`
	State         bool      `gorm:"default:true" json:"state"`
	ViewedByAdmin bool      `gorm:"default:false" json:"viewedByAdmin"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// RouletteOption is an admin-managed option for the roulette feature.
type RouletteOption struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:128;not null" json:"name"`
	Description string    `gorm:"size:1024" json:"description"`
	State       bool      `gorm:"default:true" json:"state"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
