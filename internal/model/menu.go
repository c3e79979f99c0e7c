package model

import "time"

// Menu tags a daily plan. It does not own a list of dishes.
type Menu struct {
	ID          string        `gorm:"primaryKey;size:36" json:"id"`
	UserID      string        `gorm:"index;size:36" json:"userId"`
	Name        LocalizedText `gorm:"embedded;embeddedPrefix:name_" json:"name"`
	Description LocalizedText `gorm:"embedded;embeddedPrefix:description_" json:"description,omitzero"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}
