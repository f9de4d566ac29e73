package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation is a direct thread between two members, optionally about a listing.
// UserOneID is always the smaller id of the pair.
type Conversation struct {
	gorm.Model
	UserOneID     uint       `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"userOneId"`
	UserTwoID     uint       `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"userTwoId"`
	VehicleID     uint       `gorm:"default:0;uniqueIndex:idx_conversation_pair" json:"vehicleId"`
	LastMessage   string     `gorm:"type:text" json:"lastMessage"`
	LastMessageAt *time.Time `json:"lastMessageAt"`
}

// Message belongs to a conversation
type Message struct {
	gorm.Model
	ConversationID uint       `gorm:"not null;index" json:"conversationId"`
	SenderID       uint       `gorm:"not null" json:"senderId"`
	Body           string     `gorm:"type:text;not null" json:"body"`
	ReadAt         *time.Time `json:"readAt"`
}

// ConversationPair orders two user ids the way conversations store them.
func ConversationPair(a, b uint) (uint, uint) {
	if a < b {
		return a, b
	}
	return b, a
}

func (c Conversation) HasParticipant(userID uint) bool {
	return c.UserOneID == userID || c.UserTwoID == userID
}

func (c Conversation) Other(userID uint) uint {
	if c.UserOneID == userID {
		return c.UserTwoID
	}
	return c.UserOneID
}
