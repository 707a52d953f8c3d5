package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/justsurfingit/lead-labeler/internal/extract"
)

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	FullName     string `json:"fullname"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
}

// Record is a labelled lead. Rows are written once and never updated.
type Record struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	PostedOn   string         `json:"posted_on"`
	Category   string         `json:"category"`
	Skills     string         `gorm:"type:text" json:"skills"`
	Country    string         `json:"country"`
	Message    string         `gorm:"type:text" json:"message"`
	HourlyFrom extract.Amount `json:"hourly_from"`
	HourlyTo   extract.Amount `json:"hourly_to"`
	Budget     extract.Amount `json:"budget"`
	Label      string         `gorm:"index" json:"label"`

	ModelName string `json:"model_name"`
}

// NewRecord copies the extracted fields into a record.
func NewRecord(f extract.Fields, label, modelName string) *Record {
	return &Record{
		PostedOn:   f.PostedOn,
		Category:   f.Category,
		Skills:     f.Skills,
		Country:    f.Country,
		Message:    f.Message,
		HourlyFrom: f.HourlyFrom,
		HourlyTo:   f.HourlyTo,
		Budget:     f.Budget,
		Label:      label,
		ModelName:  modelName,
	}
}

// Fields returns the extracted fields the record was built from.
func (r *Record) Fields() extract.Fields {
	return extract.Fields{
		PostedOn:   r.PostedOn,
		Category:   r.Category,
		Skills:     r.Skills,
		Country:    r.Country,
		Message:    r.Message,
		HourlyFrom: r.HourlyFrom,
		HourlyTo:   r.HourlyTo,
		Budget:     r.Budget,
	}
}

// MLModel points at an uploaded classifier artifact on disk.
type MLModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Name string `gorm:"uniqueIndex;not null" json:"model_name"`
	File string `gorm:"not null" json:"model_file"`
}

// MailboxState is the Gmail sync bookmark for one mailbox.
type MailboxState struct {
	ID            uint   `gorm:"primaryKey"`
	Email         string `gorm:"uniqueIndex;not null"`
	LastHistoryID uint64
	UpdatedAt     time.Time
}

type ProcessedEmail struct {
	ID        string `gorm:"primaryKey"`
	RecordID  *uint
	CreatedAt time.Time
}
