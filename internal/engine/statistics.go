// Package engine holds the statistics and alerting computations. Everything
// here is pure: inputs in, values out, no storage access and no clock reads.
package engine

import (
	"sort"
	"time"

	"github.com/whitfield-edu/engagement-api/internal/models"
)

const (
	// averageWindow caps how many recent check-ins feed the average, so the
	// metric tracks recent trend rather than all-time history.
	averageWindow = 5

	// lowScoreCeiling is the first score that no longer counts as low.
	lowScoreCeiling = 5

	// lowAverageThreshold flags a student whose windowed average drops below it.
	lowAverageThreshold = 5.0

	// consecutiveLowLimit flags a student after this many low scores in a row.
	consecutiveLowLimit = 3

	// disengagementWindow flags a student with no check-in for longer than this.
	disengagementWindow = 14 * 24 * time.Hour
)

// ComputeStatistics derives a fresh StudentStatistics snapshot from the
// student's wellbeing history and meetings. The slices are not mutated.
//
// A student with no check-ins has a nil LastEngagement, which always
// satisfies the disengagement clause: silence is itself a signal.
func ComputeStatistics(studentID string, wellbeing []models.WellbeingRecord, meetings []models.Meeting, now time.Time) models.StudentStatistics {
	history := make([]models.WellbeingRecord, 0, len(wellbeing))
	for _, rec := range wellbeing {
		if rec.StudentID == studentID {
			history = append(history, rec)
		}
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].RecordedAt.After(history[j].RecordedAt)
	})

	stats := models.StudentStatistics{
		StudentID:              studentID,
		AverageFeelingScore:    recentAverage(history),
		MeetingAttendanceCount: attendedMeetings(studentID, meetings, now),
		ConsecutiveLowScores:   consecutiveLowScores(history),
	}
	if len(history) > 0 {
		last := history[0].RecordedAt
		stats.LastEngagement = &last
	}

	stats.RequiresAttention = stats.AverageFeelingScore < lowAverageThreshold ||
		stats.ConsecutiveLowScores >= consecutiveLowLimit ||
		disengaged(stats.LastEngagement, now)

	return stats
}

// recentAverage is the arithmetic mean over at most the averageWindow most
// recent records; 0 when the history is empty.
func recentAverage(mostRecentFirst []models.WellbeingRecord) float64 {
	if len(mostRecentFirst) == 0 {
		return 0
	}
	window := mostRecentFirst
	if len(window) > averageWindow {
		window = window[:averageWindow]
	}
	sum := 0
	for _, rec := range window {
		sum += rec.FeelingScore
	}
	return float64(sum) / float64(len(window))
}

// consecutiveLowScores counts the run of low scores starting at the most
// recent record; the run stops at the first score at or above the ceiling.
func consecutiveLowScores(mostRecentFirst []models.WellbeingRecord) int {
	count := 0
	for _, rec := range mostRecentFirst {
		if rec.FeelingScore >= lowScoreCeiling {
			break
		}
		count++
	}
	return count
}

// attendedMeetings counts the student's meetings dated strictly before now.
// A meeting booked for later today or tomorrow has not been attended yet.
func attendedMeetings(studentID string, meetings []models.Meeting, now time.Time) int {
	count := 0
	for _, m := range meetings {
		if m.StudentID == studentID && m.Date.Before(now) {
			count++
		}
	}
	return count
}

func disengaged(lastEngagement *time.Time, now time.Time) bool {
	if lastEngagement == nil {
		return true
	}
	return now.Sub(*lastEngagement) > disengagementWindow
}
