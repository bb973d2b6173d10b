package model

import "time"

// ContactSubmission represents a message submitted via the contact form.
// ID and CreatedAt are assigned by the store at insert time.
type ContactSubmission struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// FullName joins first and last name, falling back to "Anonymous".
func (s *ContactSubmission) FullName() string {
	name := s.FirstName
	if s.LastName != "" {
		if name != "" {
			name += " "
		}
		name += s.LastName
	}
	if name == "" {
		return "Anonymous"
	}
	return name
}

// SubmissionInput is a validated contact form record that has not been stored yet.
type SubmissionInput struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Email     string `json:"email" validate:"formemail"`
	Subject   string `json:"subject" validate:"required,max=100"`
	Message   string `json:"message" validate:"min=10,max=1000"`
}

// SubmissionListOptions carries search and pagination parameters for listing submissions.
type SubmissionListOptions struct {
	// Query is a case-insensitive substring matched against names, email,
	// subject and message. Empty matches everything.
	Query string
	// Limit of 0 returns every matching submission.
	Limit  int
	Offset int
}

// SubmissionPage is one page of a listing together with the total match count.
type SubmissionPage struct {
	Submissions []*ContactSubmission `json:"submissions"`
	Total       int                  `json:"total"`
	Page        int                  `json:"page"`
	TotalPages  int                  `json:"total_pages"`
}

// SubmissionStats summarizes how many submissions arrived in recent periods.
type SubmissionStats struct {
	Total     int `json:"total"`
	ThisMonth int `json:"this_month"`
	ThisWeek  int `json:"this_week"`
	Today     int `json:"today"`
}
