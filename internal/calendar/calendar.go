// Package calendar maps calendar dates onto the course week numbering.
package calendar

import "time"

// AcademicYearStartWeek is the ISO week in which course week 0 begins.
const AcademicYearStartWeek = 39

// weeksBeforeNewYear is how many course weeks pass between AcademicYearStartWeek and ISO week 1.
const weeksBeforeNewYear = 12

// CourseWeek remaps an ISO week of the year onto the course week counter.
func CourseWeek(isoWeek int) int {
	if isoWeek >= AcademicYearStartWeek {
		return isoWeek - AcademicYearStartWeek
	}
	return isoWeek + weeksBeforeNewYear
}

type Calendar struct {
	now func() time.Time
}

// New returns a calendar reading the given clock. A nil clock means time.Now.
func New(now func() time.Time) *Calendar {
	if now == nil {
		now = time.Now
	}
	return &Calendar{now: now}
}

func (c *Calendar) CurrentWeek() int {
	_, week := c.now().ISOWeek()
	return CourseWeek(week)
}
