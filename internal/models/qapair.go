package models

import (
	"time"

	"gorm.io/datatypes"
)

// QAPair is one persisted question/answer exchange belonging to a session.
// Rows are immutable once created except for deletion.
type QAPair struct {
	ID        string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID string         `gorm:"column:session_id;type:uuid;index" json:"session_id"`
	Question  string         `gorm:"column:question;type:text" json:"question"`
	Answer    string         `gorm:"column:answer;type:text" json:"answer"`
	AIModel   string         `gorm:"column:ai_model;type:text" json:"ai_model"`
	Tone      string         `gorm:"column:tone;type:text" json:"tone"`
	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
}

func (QAPair) TableName() string { return "qa_pairs" }
