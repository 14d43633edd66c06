package model

// swagger:model Stage
type Stage struct {
	BaseModel

	StoryID  uint   `gorm:"not null;uniqueIndex:idx_stage_story_level" json:"storyId"`
	Level    int    `gorm:"not null;uniqueIndex:idx_stage_story_level" json:"level"`
	Name     string `gorm:"size:128;not null" json:"name"`
	Question string `gorm:"type:text" json:"question"`
	Password string `gorm:"size:255;not null" json:"-"` // exact, case-sensitive
}

func (Stage) TableName() string {
	return "stages"
}
