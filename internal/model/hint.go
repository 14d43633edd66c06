package model

import "time"

// swagger:model Hint
type Hint struct {
	BaseModel

	StageID uint   `gorm:"not null;index" json:"stageId"`
	Text    string `gorm:"type:text;not null" json:"text"`
	Trigger string `gorm:"size:255;not null;index" json:"trigger"`
}

func (Hint) TableName() string {
	return "hints"
}

// HintUnlock records that a hint was revealed during an attempt.
type HintUnlock struct {
	BaseModel

	AttemptID uint      `gorm:"not null;uniqueIndex:idx_unlock_attempt_hint" json:"attemptId"`
	HintID    uint      `gorm:"not null;uniqueIndex:idx_unlock_attempt_hint" json:"hintId"`
	EnterDate time.Time `gorm:"not null" json:"enterDate"`
}

func (HintUnlock) TableName() string {
	return "hint_unlocks"
}
