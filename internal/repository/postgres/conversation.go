package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"medchat/internal/logger"
	"medchat/internal/repository/db"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CreateConversation stores a new conversation
func (p *PostgresDB) CreateConversation(ctx context.Context, title string) (*db.Conversation, error) {
	conv := db.Conversation{
		ID:    uuid.New().String(),
		Title: title,
	}

	query := `
	INSERT INTO conversations (id, title)
	VALUES ($1, $2)
	RETURNING created_at, updated_at
	`

	err := p.conn.QueryRowContext(ctx, query, conv.ID, conv.Title).Scan(&conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating conversation: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{"conversation_id": conv.ID, "title": conv.Title}).Info("Created new conversation")

	return &conv, nil
}

// GetConversation retrieves a specific conversation
func (p *PostgresDB) GetConversation(ctx context.Context, convID string) (*db.Conversation, error) {
	var conv db.Conversation
	var summary sql.NullString

	query := `
	SELECT id, title, summary, created_at, updated_at
	FROM conversations
	WHERE id = $1
	`

	err := p.conn.QueryRowContext(ctx, query, convID).Scan(&conv.ID, &conv.Title, &summary, &conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
		return nil, fmt.Errorf("conversation %s: %w", convID, db.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving conversation: %w", err)
	}
	conv.Summary = nullableString(summary)

	return &conv, nil
}

// ListConversations retrieves all conversations, newest first
func (p *PostgresDB) ListConversations(ctx context.Context) ([]db.Conversation, error) {
	query := `
	SELECT id, title, summary, created_at, updated_at
	FROM conversations
	ORDER BY created_at DESC
	`

	rows, err := p.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying conversations: %w", err)
	}
	defer rows.Close()

	conversations := []db.Conversation{}
	for rows.Next() {
		var conv db.Conversation
		var summary sql.NullString
		if err := rows.Scan(&conv.ID, &conv.Title, &summary, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning conversation: %w", err)
		}
		conv.Summary = nullableString(summary)
		conversations = append(conversations, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversations: %w", err)
	}

	return conversations, nil
}

// UpdateConversationSummary overwrites the stored summary narrative
func (p *PostgresDB) UpdateConversationSummary(ctx context.Context, convID, summary string) error {
	query := `UPDATE conversations SET summary = $1, updated_at = clock_timestamp() WHERE id = $2`

	res, err := p.conn.ExecContext(ctx, query, summary, convID)
	if isInvalidID(err) {
		return fmt.Errorf("conversation %s: %w", convID, db.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("error updating conversation summary: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("conversation %s: %w", convID, db.ErrNotFound)
	}

	logger.Log.WithFields(logrus.Fields{"conversation_id": convID, "summary_chars": len(summary)}).Info("Updated conversation summary")
	return nil
}

// DeleteConversation deletes a conversation; messages go with it via ON DELETE CASCADE
func (p *PostgresDB) DeleteConversation(ctx context.Context, convID string) error {
	res, err := p.conn.ExecContext(ctx, `DELETE FROM conversations WHERE id = $1`, convID)
	if isInvalidID(err) {
		return fmt.Errorf("conversation %s: %w", convID, db.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("error deleting conversation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("conversation %s: %w", convID, db.ErrNotFound)
	}

	logger.Log.WithField("conversation_id", convID).Info("Deleted conversation")
	return nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
