package models

import "time"

// Wedding 婚礼活动
type Wedding struct {
	ID           int64     `json:"id" db:"id"`
	EventName    string    `json:"eventName" db:"event_name"`
	Date         string    `json:"date" db:"date"` // YYYY-MM-DD
	CoverMessage string    `json:"coverMessage,omitempty" db:"cover_message"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// WeddingInput 创建婚礼请求体
type WeddingInput struct {
	EventName    string `json:"eventName"`
	Date         string `json:"date"`
	CoverMessage string `json:"coverMessage"`
}
