package models

// HealthReport is the body of the health endpoint.
type HealthReport struct {
	Status           string `json:"status"`
	Timestamp        string `json:"timestamp"`
	DatabaseStatus   string `json:"database_status"`
	SubmissionsCount int64  `json:"submissions_count"`
}
