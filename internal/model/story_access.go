package model

import "time"

// StoryAccess is the purchase record of a story. It is never updated.
// swagger:model StoryAccess
type StoryAccess struct {
	BaseModel

	UserID       string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_access_user_story" json:"userId"`
	StoryID      uint      `gorm:"not null;uniqueIndex:idx_access_user_story" json:"storyId"`
	PurchaseDate time.Time `gorm:"not null" json:"purchaseDate"`
}

func (StoryAccess) TableName() string {
	return "story_accesses"
}
