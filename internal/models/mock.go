package models

// MockQuestion is one generated practice question for a mock interview run.
// These are returned to the client and not persisted.
type MockQuestion struct {
	Category   string `json:"category"` // behavioral|technical|coding|system_design
	Question   string `json:"question"`
	Difficulty string `json:"difficulty"` // easy|medium|hard
	Tips       string `json:"tips,omitempty"`
}
