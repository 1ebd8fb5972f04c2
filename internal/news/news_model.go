package news

import "time"

// Item is a news post shown on the home and news screens.
type Item struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Title     string    `json:"title" gorm:"not null"`
	Content   string    `json:"content" gorm:"type:text"`
	Author    string    `json:"author"`
	CreatedBy string    `json:"created_by" gorm:"size:36"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Item) TableName() string {
	return "news"
}

type CreateNewsRequest struct {
	Title   string `json:"title" binding:"required,max=200" example:"Season kickoff"`
	Content string `json:"content" binding:"required" example:"Registrations are now open."`
}
