package db

import "time"

// DefaultConversationTitle is stored when a conversation is created without a title
const DefaultConversationTitle = "New Consultation"

// Role identifies who authored a message
type Role string

const (
	RoleDoctor  Role = "DOCTOR"
	RolePatient Role = "PATIENT"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleDoctor || r == RolePatient
}

// Language is one of the two supported language codes
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
)

// Valid reports whether l is a supported language code
func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageHindi
}

// Name returns the English name of the language
func (l Language) Name() string {
	switch l {
	case LanguageEnglish:
		return "English"
	case LanguageHindi:
		return "Hindi"
	default:
		return string(l)
	}
}

// Conversation represents a consultation session in the database
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Summary   *string   `json:"summary"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ConversationWithPreview is a conversation with at most one message attached:
// the most recent one.
type ConversationWithPreview struct {
	Conversation
	Messages []Message `json:"messages"`
}

// Message represents one turn of a conversation
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Role           Role      `json:"role"`
	OriginalText   string    `json:"originalText"`
	TranslatedText *string   `json:"translatedText"`
	OriginalLang   Language  `json:"originalLang"`
	TargetLang     Language  `json:"targetLang"`
	AudioURL       *string   `json:"audioUrl"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewMessage holds the fields supplied when persisting a message.
// ID and CreatedAt are assigned by the store.
type NewMessage struct {
	ConversationID string
	Role           Role
	OriginalText   string
	TranslatedText *string
	OriginalLang   Language
	TargetLang     Language
	AudioURL       *string
}
