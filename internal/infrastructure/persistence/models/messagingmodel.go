package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/kesher-io/kesher/internal/shared/constants"
)

type MessageTemplateModel struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;size:100;not null"`
	Channel   string `gorm:"size:20;not null;index"`
	Subject   string `gorm:"size:255"`
	Body      string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (MessageTemplateModel) TableName() string {
	return constants.TableMessageTemplates
}

type EmailSequenceModel struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:200;not null"`
	Description string `gorm:"size:1000"`
	Trigger     string `gorm:"column:trigger_event;size:32;not null;index"`
	Active      bool   `gorm:"not null;default:true"`
	Steps       datatypes.JSON
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (EmailSequenceModel) TableName() string {
	return constants.TableEmailSequences
}

type SequenceEnrollmentModel struct {
	ID          uint       `gorm:"primaryKey"`
	SequenceID  uint       `gorm:"not null;index"`
	ContactID   uint       `gorm:"not null;index"`
	CurrentStep int        `gorm:"not null;default:0"`
	NextSendAt  *time.Time `gorm:"index"`
	Status      string     `gorm:"size:20;not null;index"`
	EnrolledAt  time.Time
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

func (SequenceEnrollmentModel) TableName() string {
	return constants.TableSequenceEnrollments
}

type SocialMessageModel struct {
	ID           uint   `gorm:"primaryKey"`
	Platform     string `gorm:"size:20;not null;index"`
	Direction    string `gorm:"size:10;not null"`
	ExternalID   string `gorm:"size:191;index"`
	SenderHandle string `gorm:"size:191;not null"`
	ContactID    *uint  `gorm:"index"`
	ReplyToID    *uint
	Content      string    `gorm:"type:text;not null"`
	Status       string    `gorm:"size:20;not null;index"`
	ReceivedAt   time.Time `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (SocialMessageModel) TableName() string {
	return constants.TableSocialMessages
}
