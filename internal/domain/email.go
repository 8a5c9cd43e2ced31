package domain

import "time"

// Email is a message submitted for scanning.
type Email struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject,omitempty"`
	From       string    `json:"from,omitempty"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// SpamType is the category reported alongside the verdict.
type SpamType string

const (
	SpamTypePromotional SpamType = "Promotional"
	SpamTypeLegitimate  SpamType = "Legitimate"
)

// Verdict is the decision payload returned for a checked text.
type Verdict struct {
	IsSpam      bool     `json:"is_spam"`
	SpamScore   float64  `json:"spam_score"`
	Description string   `json:"description"`
	Summary     string   `json:"summary"`
	SpamType    SpamType `json:"spam_type"`
}

// Source records how a scan reached the service.
type Source string

const (
	SourceAPI   Source = "api"
	SourceQueue Source = "queue"
)

// Scan is a persisted verdict.
type Scan struct {
	ID        string    `json:"id"`
	Source    Source    `json:"source"`
	EmailID   string    `json:"email_id,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	From      string    `json:"from,omitempty"`
	TextHash  string    `json:"text_hash"`
	Verdict   Verdict   `json:"verdict"`
	CreatedAt time.Time `json:"created_at"`
}
