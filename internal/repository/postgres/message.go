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

const messageColumns = `id, conversation_id, role, original_text, translated_text, original_lang, target_lang, audio_url, created_at`

// AddMessage adds a message to a conversation and refreshes the
// conversation's updated_at
func (p *PostgresDB) AddMessage(ctx context.Context, m db.NewMessage) (*db.Message, error) {
	msg := db.Message{
		ID:             uuid.New().String(),
		ConversationID: m.ConversationID,
		Role:           m.Role,
		OriginalText:   m.OriginalText,
		TranslatedText: m.TranslatedText,
		OriginalLang:   m.OriginalLang,
		TargetLang:     m.TargetLang,
		AudioURL:       m.AudioURL,
	}

	query := `
	INSERT INTO messages (id, conversation_id, role, original_text, translated_text, original_lang, target_lang, audio_url)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING created_at
	`

	err := p.conn.QueryRowContext(ctx, query,
		msg.ID, msg.ConversationID, string(msg.Role), msg.OriginalText, msg.TranslatedText,
		string(msg.OriginalLang), string(msg.TargetLang), msg.AudioURL,
	).Scan(&msg.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) || isInvalidID(err) {
			return nil, fmt.Errorf("conversation %s: %w", m.ConversationID, db.ErrNotFound)
		}
		return nil, fmt.Errorf("error adding message: %w", err)
	}

	updateQuery := `UPDATE conversations SET updated_at = clock_timestamp() WHERE id = $1`
	if _, err := p.conn.ExecContext(ctx, updateQuery, msg.ConversationID); err != nil {
		logger.Log.WithError(err).Warn("Error updating conversation timestamp")
	}

	logger.Log.WithFields(logrus.Fields{
		"conversation_id": msg.ConversationID,
		"message_id":      msg.ID,
		"role":            msg.Role,
		"translated":      msg.TranslatedText != nil,
		"has_audio":       msg.AudioURL != nil,
	}).Debug("Added message to conversation")

	return &msg, nil
}

// GetConversationMessages retrieves the messages of a conversation in
// chronological order. A non-empty search keeps only messages whose original
// or translated text contains it, ignoring case.
func (p *PostgresDB) GetConversationMessages(ctx context.Context, conversationID, search string) ([]db.Message, error) {
	var (
		rows *sql.Rows
		err  error
	)

	if search == "" {
		query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC
		`
		rows, err = p.conn.QueryContext(ctx, query, conversationID)
	} else {
		// strpos avoids having to escape LIKE wildcards in user input
		query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE conversation_id = $1
		  AND (strpos(lower(original_text), lower($2)) > 0
		       OR strpos(lower(COALESCE(translated_text, '')), lower($2)) > 0)
		ORDER BY created_at ASC, id ASC
		`
		rows, err = p.conn.QueryContext(ctx, query, conversationID, search)
	}
	if isInvalidID(err) {
		return []db.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	messages := []db.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// GetLatestMessage returns the most recent message of a conversation, or nil
// when it has none
func (p *PostgresDB) GetLatestMessage(ctx context.Context, conversationID string) (*db.Message, error) {
	query := `
	SELECT ` + messageColumns + `
	FROM messages
	WHERE conversation_id = $1
	ORDER BY created_at DESC, id DESC
	LIMIT 1
	`

	msg, err := scanMessage(p.conn.QueryRowContext(ctx, query, conversationID))
	if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*db.Message, error) {
	var (
		msg                      db.Message
		role, origLang, tgtLang  string
		translatedText, audioURL sql.NullString
	)

	err := row.Scan(&msg.ID, &msg.ConversationID, &role, &msg.OriginalText, &translatedText, &origLang, &tgtLang, &audioURL, &msg.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning message: %w", err)
	}

	msg.Role = db.Role(role)
	msg.OriginalLang = db.Language(origLang)
	msg.TargetLang = db.Language(tgtLang)
	msg.TranslatedText = nullableString(translatedText)
	msg.AudioURL = nullableString(audioURL)

	return &msg, nil
}
