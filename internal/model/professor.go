package model

import "time"

// Professor преподаватель для платных консультаций
type Professor struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Department   string    `json:"department"`
	ShortBio     string    `json:"short_bio,omitempty"`
	CalendlyLink string    `json:"calendly_link"`
	CreatedAt    time.Time `json:"created_at"`
}
