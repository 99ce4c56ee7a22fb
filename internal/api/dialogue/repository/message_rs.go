package dialogueRepository

import (
	"SupportDesk/internal/entity"
	contextPkg "SupportDesk/pkg/context"
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ConversationMessageDB struct {
	ID             sql.NullString `db:"id"`
	ConversationID sql.NullString `db:"conversation_id"`
	Role           sql.NullString `db:"role"`
	Message        sql.NullString `db:"message"`
	CreatedAt      time.Time      `db:"created_at"`
}

func (r *messageRepository) CreateMessage(c context.Context, message entity.ConversationMessage) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":              message.ID,
		"conversation_id": message.ConversationID,
		"role":            message.Role,
		"message":         message.Message,
		"created_at":      message.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateMessage, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateMessage named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating conversation message")

		return err
	}

	return nil
}

func (r *messageRepository) GetMessagesByConversationID(c context.Context, conversationID string) ([]entity.ConversationMessage, error) {
	requestID := contextPkg.GetRequestID(c)
	var messages []ConversationMessageDB

	argsKV := map[string]interface{}{
		"conversation_id": conversationID,
	}

	query, args, err := sqlx.Named(queryGetMessagesByConversationID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetMessagesByConversationID named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &messages, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetMessagesByConversationID execution err")
		return nil, err
	}

	result := make([]entity.ConversationMessage, 0, len(messages))
	for _, message := range messages {
		result = append(result, r.makeConversationMessage(message))
	}

	return result, nil
}

func (r *messageRepository) makeConversationMessage(message ConversationMessageDB) entity.ConversationMessage {
	return entity.ConversationMessage{
		ID:             message.ID.String,
		ConversationID: message.ConversationID.String,
		Role:           message.Role.String,
		Message:        message.Message.String,
		CreatedAt:      message.CreatedAt,
	}
}
