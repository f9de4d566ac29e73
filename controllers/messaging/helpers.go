package messagingController

import (
	"errors"
	"fmt"
	"time"

	"paddock/apperrors"
	"paddock/models"
	"paddock/utils"

	"gorm.io/gorm"
)

func participantConversation(db *gorm.DB, id, userID uint) (models.Conversation, error) {
	var conversation models.Conversation
	if err := db.First(&conversation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return conversation, fmt.Errorf("conversation %d: %w", id, apperrors.ErrNotFound)
		}
		return conversation, err
	}
	if !conversation.HasParticipant(userID) {
		return conversation, fmt.Errorf("conversation %d: %w", id, apperrors.ErrForbidden)
	}
	return conversation, nil
}

// appendMessage stores a message and bumps the conversation summary.
func appendMessage(tx *gorm.DB, conversation models.Conversation, senderID uint, body string) (models.Message, error) {
	message := models.Message{ConversationID: conversation.ID, SenderID: senderID, Body: body}
	if err := tx.Create(&message).Error; err != nil {
		return message, err
	}

	preview := []rune(body)
	if len(preview) > previewLength {
		preview = preview[:previewLength]
	}
	now := time.Now().UTC()
	err := tx.Model(&models.Conversation{}).Where("id = ?", conversation.ID).Updates(map[string]interface{}{
		"last_message":    string(preview),
		"last_message_at": now,
	}).Error
	return message, err
}

func notifyRecipient(db *gorm.DB, recipient models.User, senderID uint, message models.Message) {
	var sender models.User
	if err := db.Select("id", "name").First(&sender, senderID).Error; err != nil {
		return
	}
	utils.SendNewMessageEmail(recipient.Email, recipient.Name, sender.Name, message.Body, message.ConversationID)
}
