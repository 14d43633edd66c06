package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// swagger:model
type BaseModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// UUIDBase is used by records whose id is handed out to other systems (users).
// swagger:model
type UUIDBase struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *UUIDBase) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = GenerateUUID()
	}
	return
}

func GenerateUUID() string {
	return uuid.New().String()
}
