package domain

import "time"

type Language struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:64;uniqueIndex;not null"`
	DisplayName string    `json:"display_name" gorm:"size:128;not null"`
	CreatedBy   string    `json:"created_by" gorm:"size:64"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Language) TableName() string { return "languages" }
