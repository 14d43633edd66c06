package service

import (
	"encoding/json"
	"time"

	"escape_room_backend/internal/model"
)

// StatusView is the externally visible status of a story. The concrete type
// tells the state; each one carries only the fields valid for it.
type StatusView interface {
	Status() StoryStatus
	isStatusView()
}

type NewStatus struct{}

type PurchasedStatus struct {
	PurchaseDate time.Time `json:"purchaseDate"`
}

type StartedStatus struct {
	PurchaseDate time.Time `json:"purchaseDate"`
	AttemptID    uint      `json:"attemptId"`
	StageID      uint      `json:"stageId"`
	StartDate    time.Time `json:"startDate"`
}

type EndedStatus struct {
	PurchaseDate time.Time `json:"purchaseDate"`
	AttemptID    uint      `json:"attemptId"`
	StageID      uint      `json:"stageId"`
	StartDate    time.Time `json:"startDate"`
	FinishDate   time.Time `json:"finishDate"`
}

func (NewStatus) Status() StoryStatus       { return StatusNew }
func (PurchasedStatus) Status() StoryStatus { return StatusPurchased }
func (StartedStatus) Status() StoryStatus   { return StatusStarted }
func (EndedStatus) Status() StoryStatus     { return StatusEnded }

func (NewStatus) isStatusView()       {}
func (PurchasedStatus) isStatusView() {}
func (StartedStatus) isStatusView()   {}
func (EndedStatus) isStatusView()     {}

func (v NewStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Status StoryStatus `json:"status"`
	}{v.Status()})
}

func (v PurchasedStatus) MarshalJSON() ([]byte, error) {
	type fields PurchasedStatus
	return json.Marshal(struct {
		Status StoryStatus `json:"status"`
		fields
	}{v.Status(), fields(v)})
}

func (v StartedStatus) MarshalJSON() ([]byte, error) {
	type fields StartedStatus
	return json.Marshal(struct {
		Status StoryStatus `json:"status"`
		fields
	}{v.Status(), fields(v)})
}

func (v EndedStatus) MarshalJSON() ([]byte, error) {
	type fields EndedStatus
	return json.Marshal(struct {
		Status StoryStatus `json:"status"`
		fields
	}{v.Status(), fields(v)})
}

type StageView struct {
	Name     string `json:"name"`
	Level    int    `json:"level"`
	Question string `json:"question"`
}

type AttemptView struct {
	StartDate time.Time `json:"startDate"`
	Stage     StageView `json:"stage"`
	IsStale   bool      `json:"isStale"`
}

type HintView struct {
	Text    string `json:"text"`
	Trigger string `json:"trigger"`
}

// PasswordCheck is the outcome of a password submission. A wrong password is
// an outcome, not an error.
type PasswordCheck struct {
	Message       string `json:"message"`
	NewHint       bool   `json:"newHint"`
	NextAttemptID *uint  `json:"nextAttemptId"`
	EndStory      bool   `json:"endStory"`
}

// ToStatusView projects a loaded context. It never touches the database.
func ToStatusView(sc StoryContext) StatusView {
	if sc.Access == nil {
		return NewStatus{}
	}
	if sc.Attempt == nil {
		return PurchasedStatus{PurchaseDate: sc.Access.PurchaseDate}
	}
	if sc.Attempt.FinishDate == nil {
		return StartedStatus{
			PurchaseDate: sc.Access.PurchaseDate,
			AttemptID:    sc.Attempt.ID,
			StageID:      sc.Attempt.StageID,
			StartDate:    sc.Attempt.StartDate,
		}
	}
	return EndedStatus{
		PurchaseDate: sc.Access.PurchaseDate,
		AttemptID:    sc.Attempt.ID,
		StageID:      sc.Attempt.StageID,
		StartDate:    sc.Attempt.StartDate,
		FinishDate:   *sc.Attempt.FinishDate,
	}
}

func ToAttemptView(sc StoryContext) AttemptView {
	view := AttemptView{IsStale: sc.Stale}
	if sc.Attempt != nil {
		view.StartDate = sc.Attempt.StartDate
	}
	if sc.Stage != nil {
		view.Stage = StageView{
			Name:     sc.Stage.Name,
			Level:    sc.Stage.Level,
			Question: sc.Stage.Question,
		}
	}
	return view
}

func ToHintViews(hints []model.Hint) []HintView {
	views := make([]HintView, 0, len(hints))
	for _, h := range hints {
		views = append(views, HintView{Text: h.Text, Trigger: h.Trigger})
	}
	return views
}
