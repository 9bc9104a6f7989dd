// Package domain contains persistence models and contracts for submissions.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Status is the submission lifecycle. Transitions only ever move
// processing -> completed or processing -> failed.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Submission is one accepted form post. Immutable after insert except for
// the status fields, which the dispatcher writes exactly once.
type Submission struct {
	ID     snowflake.ID `gorm:"primaryKey"`
	FormID snowflake.ID `gorm:"not null;index"`

	Fields    datatypes.JSONMap `gorm:"type:jsonb"`
	Analytics datatypes.JSONMap `gorm:"type:jsonb"`
	UTM       datatypes.JSONMap `gorm:"column:utm;type:jsonb"`

	Status         Status            `gorm:"type:text;not null"`
	SheetRowNumber *int64            `gorm:""`
	SinkResults    datatypes.JSONMap `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName sets the database table name.
func (Submission) TableName() string { return "submissions" }
