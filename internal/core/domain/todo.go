package domain

import "time"

// Todo is an independent checklist item. It has no relationship to the
// financial entities and is carried only because it shares the sync envelope.
type Todo struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt"`
}
