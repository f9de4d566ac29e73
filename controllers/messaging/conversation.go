package messagingController

import (
	"errors"
	"time"

	"paddock/database"
	"paddock/logger"
	"paddock/middleware"
	"paddock/models"
	"paddock/utils"
	"paddock/validators"
	messagingValidator "paddock/validators/messaging"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const previewLength = 200

// ConversationItem is a conversation as listed for one participant.
type ConversationItem struct {
	models.Conversation
	Participant models.PublicUser `json:"participant"`
	UnreadCount int64             `json:"unreadCount"`
}

func StartConversation(c *fiber.Ctx) error {
	userId := middleware.CurrentUserID(c)
	reqData := c.Locals("validatedConversation").(*messagingValidator.StartConversationRequest)
	db := database.Database.Db

	if reqData.RecipientID == userId {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You cannot message yourself!", nil)
	}

	var recipient models.User
	if err := db.Where("id = ? AND is_deleted = ?", reqData.RecipientID, false).First(&recipient).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Recipient not found!", nil)
	}
	if reqData.VehicleID != 0 {
		var vehicle models.Vehicle
		if err := db.Where("id = ? AND is_deleted = ?", reqData.VehicleID, false).First(&vehicle).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Vehicle not found!", nil)
		}
	}

	one, two := models.ConversationPair(userId, recipient.ID)
	conversation := models.Conversation{UserOneID: one, UserTwoID: two, VehicleID: reqData.VehicleID}
	created := false

	var message models.Message
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_one_id = ? AND user_two_id = ? AND vehicle_id = ?", one, two, reqData.VehicleID).
			First(&conversation).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			err = tx.Create(&conversation).Error
		}
		if err != nil {
			return err
		}
		message, err = appendMessage(tx, conversation, userId, reqData.Message)
		return err
	})
	if err != nil {
		logger.Log.Error("error starting conversation", logger.Uint("userId", userId), logger.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to send message!", nil)
	}

	notifyRecipient(db, recipient, userId, message)

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	db.First(&conversation, conversation.ID)
	return middleware.JsonResponse(c, status, true, "Message sent.", fiber.Map{
		"conversation": conversation,
		"message":      message,
	})
}

func SendMessage(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid conversation id!")
	}
	userId := middleware.CurrentUserID(c)
	reqData := c.Locals("validatedMessage").(*messagingValidator.SendMessageRequest)
	db := database.Database.Db

	conversation, err := participantConversation(db, id, userId)
	if err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	var message models.Message
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		message, err = appendMessage(tx, conversation, userId, reqData.Body)
		return err
	})
	if err != nil {
		logger.Log.Error("error sending message", logger.Uint("conversationId", id), logger.Error(err))
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to send message!", nil)
	}

	var recipient models.User
	if db.First(&recipient, conversation.Other(userId)).Error == nil {
		notifyRecipient(db, recipient, userId, message)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Message sent.", message)
}

func ListConversations(c *fiber.Ctx) error {
	userId := middleware.CurrentUserID(c)
	db := database.Database.Db

	var conversations []models.Conversation
	if err := db.Where("user_one_id = ? OR user_two_id = ?", userId, userId).
		Order("last_message_at DESC, id DESC").Find(&conversations).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	ids := make([]uint, 0, len(conversations))
	others := make([]uint, 0, len(conversations))
	for _, conv := range conversations {
		ids = append(ids, conv.ID)
		others = append(others, conv.Other(userId))
	}

	unread := map[uint]int64{}
	people := map[uint]models.PublicUser{}
	if len(ids) > 0 {
		var rows []struct {
			ConversationID uint
			Unread         int64
		}
		if err := db.Model(&models.Message{}).
			Select("conversation_id, COUNT(*) AS unread").
			Where("conversation_id IN ? AND sender_id <> ? AND read_at IS NULL", ids, userId).
			Group("conversation_id").Scan(&rows).Error; err != nil {
			return middleware.ErrorResponse(c, err, "")
		}
		for _, row := range rows {
			unread[row.ConversationID] = row.Unread
		}

		var users []models.User
		if err := db.Where("id IN ?", others).Find(&users).Error; err != nil {
			return middleware.ErrorResponse(c, err, "")
		}
		for _, u := range users {
			people[u.ID] = u.Public()
		}
	}

	items := make([]ConversationItem, 0, len(conversations))
	for _, conv := range conversations {
		other := conv.Other(userId)
		participant, ok := people[other]
		if !ok {
			participant = models.PublicUser{ID: other}
		}
		items = append(items, ConversationItem{Conversation: conv, Participant: participant, UnreadCount: unread[conv.ID]})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Conversations.", items)
}

func ListMessages(c *fiber.Ctx) error {
	id, err := middleware.ParamID(c, "id")
	if err != nil {
		return middleware.ErrorResponse(c, err, "Invalid conversation id!")
	}
	userId := middleware.CurrentUserID(c)
	reqData := c.Locals("validatedPage").(*validators.PageQuery)
	page := utils.NewPagination(reqData.Page, reqData.Limit, 30, 100)
	db := database.Database.Db

	conversation, err := participantConversation(db, id, userId)
	if err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	if err := db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversation.ID, userId).
		Update("read_at", time.Now().UTC()).Error; err != nil {
		logger.Log.Warning("error marking messages read", logger.Uint("conversationId", id), logger.Error(err))
	}

	query := db.Model(&models.Message{}).Where("conversation_id = ?", conversation.ID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}
	messages := []models.Message{}
	if err := query.Order("created_at DESC, id DESC").Offset(page.Offset()).Limit(page.Limit).Find(&messages).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Messages.", fiber.Map{
		"conversation": conversation,
		"messages":     messages,
		"pagination":   page.Meta(total),
	})
}

func UnreadCount(c *fiber.Ctx) error {
	userId := middleware.CurrentUserID(c)

	var count int64
	if err := database.Database.Db.Model(&models.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("(conversations.user_one_id = ? OR conversations.user_two_id = ?)", userId, userId).
		Where("messages.sender_id <> ? AND messages.read_at IS NULL AND messages.deleted_at IS NULL", userId).
		Count(&count).Error; err != nil {
		return middleware.ErrorResponse(c, err, "")
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Unread messages.", fiber.Map{"unread": count})
}
