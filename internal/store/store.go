// Package store persists the whole data set as one document. Every backend
// implements the same coarse contract: read everything at startup, rewrite
// everything after each mutation. This keeps the engine logic independent of
// where the document lives (flat file, embedded SQLite, Postgres).
package store

import (
	"context"

	"github.com/whitfield-edu/engagement-api/internal/models"
)

// Snapshot is the serialized document: one collection per entity plus the
// derived statistics map keyed by student id.
type Snapshot struct {
	Users            []models.User                       `json:"users"`
	Meetings         []models.Meeting                    `json:"meetings"`
	WellbeingRecords []models.WellbeingRecord            `json:"wellbeing_records"`
	Notifications    []models.Notification               `json:"notifications"`
	Statistics       map[string]models.StudentStatistics `json:"student_statistics"`
}

// NewSnapshot returns an empty snapshot with initialized collections.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Users:            []models.User{},
		Meetings:         []models.Meeting{},
		WellbeingRecords: []models.WellbeingRecord{},
		Notifications:    []models.Notification{},
		Statistics:       map[string]models.StudentStatistics{},
	}
}

// normalize fills nil collections after deserialization so callers never
// see nil slices or maps.
func (s *Snapshot) normalize() {
	if s.Users == nil {
		s.Users = []models.User{}
	}
	if s.Meetings == nil {
		s.Meetings = []models.Meeting{}
	}
	if s.WellbeingRecords == nil {
		s.WellbeingRecords = []models.WellbeingRecord{}
	}
	if s.Notifications == nil {
		s.Notifications = []models.Notification{}
	}
	if s.Statistics == nil {
		s.Statistics = map[string]models.StudentStatistics{}
	}
}

// Store is the persistence contract for the snapshot document.
//
// Load returns (nil, nil) when no document exists yet; the caller decides
// whether to seed. SaveAll atomically replaces the persisted document.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	SaveAll(ctx context.Context, snapshot *Snapshot) error
}
