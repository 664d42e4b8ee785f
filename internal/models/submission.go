package models

import "time"

// SubmissionFields holds the normalized form fields accepted by the validator.
type SubmissionFields struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// NewSubmission is an already-validated record handed to a repository for appending.
// The repository assigns the ID and the creation time.
type NewSubmission struct {
	SubmissionFields
	IPAddress string
}

// Submission represents a stored form submission.
type Submission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	IPAddress string    `json:"ipAddress"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublicSubmission is the listing shape of a submission. It never carries the origin address.
type PublicSubmission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public returns the submission with the IP address stripped.
func (s Submission) Public() PublicSubmission {
	return PublicSubmission{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Message:   s.Message,
		CreatedAt: s.CreatedAt,
	}
}

// SubmissionCreatedEvent is published after a submission has been stored.
type SubmissionCreatedEvent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewSubmissionCreatedEvent builds the event payload for a stored submission.
func NewSubmissionCreatedEvent(s Submission) SubmissionCreatedEvent {
	return SubmissionCreatedEvent{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		CreatedAt: s.CreatedAt,
	}
}
