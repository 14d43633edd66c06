package model

const (
	StoryDifficultyEasy   = "easy"
	StoryDifficultyNormal = "normal"
	StoryDifficultyHard   = "hard"
)

// Story is a purchasable unit of content made of ordered stages.
// swagger:model Story
type Story struct {
	BaseModel

	Title       string   `gorm:"size:255;not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	Type        string   `gorm:"size:100" json:"type"`
	Difficulty  string   `gorm:"size:50" json:"difficulty"`
	Rating      *float64 `json:"rating,omitempty"`
	Cost        int      `gorm:"not null;default:0" json:"cost"` // gold
	CoverKey    string   `gorm:"size:255" json:"-"`              // object storage key
}

func (Story) TableName() string {
	return "stories"
}
