package model

// swagger:model User
type User struct {
	UUIDBase
	Username string `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email    string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password string `gorm:"size:100;not null" json:"-"`
	Gold     int    `gorm:"not null;default:0" json:"gold"`
	IsActive bool   `gorm:"default:true" json:"isActive"`
}

func (User) TableName() string {
	return "users"
}
