package model

import "time"

// Attempt is one visit to a stage under a story access. The attempts of an
// access form a chain; the one with the highest id is the active attempt.
// swagger:model Attempt
type Attempt struct {
	BaseModel

	StoryAccessID uint       `gorm:"not null;uniqueIndex:idx_attempt_access_stage" json:"storyAccessId"`
	StageID       uint       `gorm:"not null;uniqueIndex:idx_attempt_access_stage" json:"stageId"`
	StartDate     time.Time  `gorm:"not null" json:"startDate"`
	FinishDate    *time.Time `json:"finishDate,omitempty"`
}

func (Attempt) TableName() string {
	return "attempts"
}

func (a *Attempt) Finished() bool {
	return a.FinishDate != nil
}

// PasswordSubmission is the append-only audit log of submitted passwords.
type PasswordSubmission struct {
	BaseModel

	AttemptID uint      `gorm:"not null;index" json:"attemptId"`
	Password  string    `gorm:"type:text;not null" json:"password"`
	EnterDate time.Time `gorm:"not null" json:"enterDate"`
}

func (PasswordSubmission) TableName() string {
	return "password_submissions"
}
