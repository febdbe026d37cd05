package store

import (
	"fmt"
	"strings"
)

// Position is the employment type of a job
type Position string

// supported positions
const (
	PositionFullTime   Position = "Full-time"
	PositionPartTime   Position = "Part-time"
	PositionContract   Position = "Contract"
	PositionInternship Position = "Internship"
)

// Positions returns all supported positions in display order
func Positions() []Position {
	return []Position{PositionFullTime, PositionPartTime, PositionContract, PositionInternship}
}

// ParsePosition converts a string to Position, case-insensitive
func ParsePosition(s string) (Position, error) {
	for _, p := range Positions() {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown position %q", s)
}

func (p Position) String() string { return string(p) }

// ApplicationStatus is the state of an application, only "Applied" is ever set
const ApplicationStatus = "Applied"

// Job is a single posted position
type Job struct {
	ID          int64    `json:"id" yaml:"id" jsonschema:"required"`
	Title       string   `json:"title" yaml:"title" jsonschema:"required,minLength=1"`
	Company     string   `json:"company" yaml:"company" jsonschema:"required,minLength=1"`
	Position    Position `json:"position" yaml:"position" jsonschema:"description=one of Full-time/Part-time/Contract/Internship"`
	Location    string   `json:"location" yaml:"location"`
	Salary      string   `json:"salary" yaml:"salary"`
	StartDate   string   `json:"startDate" yaml:"startDate" jsonschema:"description=start date as YYYY-MM-DD"`
	Description string   `json:"description" yaml:"description"`
	DatePosted  string   `json:"datePosted" yaml:"datePosted" jsonschema:"description=posting date as YYYY-MM-DD"`
}

// User is a registered account
type User struct {
	ID         int64  `json:"id" jsonschema:"required"`
	Name       string `json:"name"`
	Email      string `json:"email" jsonschema:"required"`
	Password   string `json:"password"`
	DateJoined string `json:"dateJoined"`
}

// Application records a user applying to a job
type Application struct {
	ID          int64  `json:"id" jsonschema:"required"`
	JobID       int64  `json:"jobId" jsonschema:"required"`
	UserID      int64  `json:"userId" jsonschema:"required"`
	DateApplied string `json:"dateApplied"`
	Status      string `json:"status" jsonschema:"enum=Applied"`
}

// JobRequest holds the fields a user fills in to post a job
type JobRequest struct {
	Title       string
	Company     string
	Position    string
	Location    string
	Salary      string
	StartDate   string
	Description string
}
