package models

import "time"

type CalendarEvent struct {
	ID          string     `json:"id"`
	FamilyID    string     `json:"family_id"`
	CreatedBy   *string    `json:"created_by"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Color       string     `json:"color"`
	CreatedAt   time.Time  `json:"created_at"`
}
