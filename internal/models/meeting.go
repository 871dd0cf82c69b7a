package models

import "time"

// Meeting is an appointment between a student and their personal
// supervisor. Names are denormalized at creation time and are not kept in
// sync with later user renames.
type Meeting struct {
	ID             string    `db:"id" json:"id"`
	Date           time.Time `db:"date" json:"date"`
	StudentID      string    `db:"student_id" json:"student_id"`
	StudentName    string    `db:"student_name" json:"student_name"`
	SupervisorID   string    `db:"supervisor_id" json:"supervisor_id"`
	SupervisorName string    `db:"supervisor_name" json:"supervisor_name"`
	Note           string    `db:"note" json:"note"`
}
