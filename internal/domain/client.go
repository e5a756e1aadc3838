package domain

import "time"

// Gender enumerates accepted client gender values.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Valid reports whether the gender is one of the known values.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

// Client is a person receiving care, independent of any program.
type Client struct {
	ID          string
	FullName    string
	Phone       *string
	Address     *string
	DateOfBirth time.Time
	Gender      Gender
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Age returns the client's age in whole years as of the given instant.
func (c Client) Age(now time.Time) int {
	years := now.Year() - c.DateOfBirth.Year()
	birthday := time.Date(now.Year(), c.DateOfBirth.Month(), c.DateOfBirth.Day(), 0, 0, 0, 0, time.UTC)
	if now.Before(birthday) {
		years--
	}
	return years
}

// ClientWithEnrollments bundles a client with their enrollment records.
type ClientWithEnrollments struct {
	Client
	Enrollments []Enrollment
}
