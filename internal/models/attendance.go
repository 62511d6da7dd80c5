package models

import (
	"github.com/go-playground/validator/v10"
)

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLate    AttendanceStatus = "late"
	StatusExcused AttendanceStatus = "excused"
)

// CountsPresent reports whether the status counts towards the attendance
// rate. Late arrivals count, absences and excusals do not.
func (s AttendanceStatus) CountsPresent() bool {
	return s == StatusPresent || s == StatusLate
}

// AttendanceRecord is one student's attendance mark for one calendar day.
// Dates are day-keyed strings (2006-01-02). GroupID and Year are denormalized
// from the student at creation time so reports can filter without joins.
// At most one record should exist per (student, date); the store enforces
// this by lookup-then-write, not by a uniqueness constraint.
type AttendanceRecord struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id" validate:"required"`
	Date      string           `db:"date" json:"date" validate:"required,datetime=2006-01-02"`
	Status    AttendanceStatus `db:"status" json:"status" validate:"required,oneof=present absent late excused"`
	GroupID   string           `db:"group_id" json:"group_id"`
	Year      int              `db:"year" json:"year"`
	TrainerID string           `db:"trainer_id" json:"trainer_id"`
	Synced    bool             `db:"synced" json:"synced"`
}

func (a *AttendanceRecord) Validate() error {
	validate := validator.New()
	return validate.Struct(a)
}
