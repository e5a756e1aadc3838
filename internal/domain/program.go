package domain

import "time"

// HealthProgram is a program clients can be enrolled into (e.g. TB, HIV).
type HealthProgram struct {
	ID        string
	Name      string
	CreatedBy string
	CreatedAt time.Time
}
