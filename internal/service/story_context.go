package service

import (
	"escape_room_backend/internal/model"
)

// StoryStatus is the progression state of one user against one story.
type StoryStatus string

const (
	StatusNew       StoryStatus = "new"
	StatusPurchased StoryStatus = "purchased"
	StatusStarted   StoryStatus = "started"
	StatusEnded     StoryStatus = "finished"
)

// StoryContext is everything the loaders found about a user's relationship to
// a story. It is a value: operations never modify the context they receive
// and return a fresh one instead.
//
// Field presence follows Status:
//
//	new        Access, Attempt and Stage are nil
//	purchased  Access set, Attempt and Stage nil
//	started    Access, Attempt and Stage set, Attempt not finished
//	finished   Access, Attempt and Stage set, Attempt finished
type StoryContext struct {
	User    model.User
	Story   model.Story
	Access  *model.StoryAccess
	Attempt *model.Attempt // active attempt of Access
	Stage   *model.Stage   // stage of Attempt
	Status  StoryStatus

	// Set when loaded by attempt id. Stale means the requested attempt is no
	// longer the active one.
	RequestedAttemptID uint
	Stale              bool
}

func statusOf(access *model.StoryAccess, attempt *model.Attempt) StoryStatus {
	switch {
	case access == nil:
		return StatusNew
	case attempt == nil:
		return StatusPurchased
	case attempt.Finished():
		return StatusEnded
	default:
		return StatusStarted
	}
}
