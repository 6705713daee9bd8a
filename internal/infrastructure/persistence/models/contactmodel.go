package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kesher-io/kesher/internal/shared/constants"
)

type ContactModel struct {
	ID        uint    `gorm:"primaryKey"`
	FirstName string  `gorm:"size:100;not null"`
	LastName  string  `gorm:"size:100"`
	Email     *string `gorm:"uniqueIndex;size:255"`
	Phone     *string `gorm:"size:32;index"`
	Source    string  `gorm:"size:50;index"`
	Status    string  `gorm:"size:20;not null;index"`
	Tags      datatypes.JSON
	Notes     string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ContactModel) TableName() string {
	return constants.TableContacts
}
