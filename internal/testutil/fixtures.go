package testutil

import (
	"fmt"
	"testing"
	"time"

	"escape_room_backend/internal/model"

	"gorm.io/gorm"
)

func CreateUser(tb testing.TB, db *gorm.DB, username string, gold int) *model.User {
	tb.Helper()
	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		Gold:     gold,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		tb.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// CreateStory creates a story with one stage per password, levels starting at 1.
func CreateStory(tb testing.TB, db *gorm.DB, cost int, passwords ...string) (*model.Story, []model.Stage) {
	tb.Helper()
	story := &model.Story{
		Title:       fmt.Sprintf("Story %d", time.Now().UnixNano()),
		Description: "A locked room and a ticking clock.",
		Type:        "mystery",
		Difficulty:  model.StoryDifficultyNormal,
		Cost:        cost,
	}
	if err := db.Create(story).Error; err != nil {
		tb.Fatalf("create story: %v", err)
	}

	stages := make([]model.Stage, 0, len(passwords))
	for i, pw := range passwords {
		stage := model.Stage{
			StoryID:  story.ID,
			Level:    i + 1,
			Name:     fmt.Sprintf("Room %d", i+1),
			Question: fmt.Sprintf("What opens room %d?", i+1),
			Password: pw,
		}
		if err := db.Create(&stage).Error; err != nil {
			tb.Fatalf("create stage %d: %v", i+1, err)
		}
		stages = append(stages, stage)
	}
	return story, stages
}

func CreateHint(tb testing.TB, db *gorm.DB, stageID uint, text, trigger string) *model.Hint {
	tb.Helper()
	hint := &model.Hint{StageID: stageID, Text: text, Trigger: trigger}
	if err := db.Create(hint).Error; err != nil {
		tb.Fatalf("create hint: %v", err)
	}
	return hint
}

func CreateAccess(tb testing.TB, db *gorm.DB, userID string, storyID uint) *model.StoryAccess {
	tb.Helper()
	access := &model.StoryAccess{UserID: userID, StoryID: storyID, PurchaseDate: time.Now()}
	if err := db.Create(access).Error; err != nil {
		tb.Fatalf("create access: %v", err)
	}
	return access
}
