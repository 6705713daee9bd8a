package models

import (
	"time"

	"github.com/kesher-io/kesher/internal/shared/constants"
)

type ProductModel struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:200;not null"`
	Slug        string `gorm:"uniqueIndex;size:200;not null"`
	Description string `gorm:"type:text"`
	Type        string `gorm:"size:20;not null;index"`
	Price       int64  `gorm:"not null"`
	Currency    string `gorm:"size:3;not null;default:'ILS'"`
	Active      bool   `gorm:"not null;default:true;index"`
	SortOrder   int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ProductModel) TableName() string {
	return constants.TableProducts
}
