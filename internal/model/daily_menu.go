package model

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the calendar-day key format.
const DayLayout = "2006-01-02"

// DailyMenu assigns a menu and up to one dish per course to a calendar day.
// There is at most one per user and day.
type DailyMenu struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	UserID       string    `gorm:"index;size:36" json:"userId"`
	Date         time.Time `gorm:"type:date;index" json:"date"`
	MenuID       string    `gorm:"size:36" json:"menuId"`
	FirstCourse  *string   `gorm:"column:first_course_id;size:36" json:"firstCourse"`
	SecondCourse *string   `gorm:"column:second_course_id;size:36" json:"secondCourse"`
	Dessert      *string   `gorm:"column:dessert_id;size:36" json:"dessert"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Course returns the dish id chosen for c, or nil.
func (d DailyMenu) Course(c Course) *string {
	switch c {
	case CourseFirst:
		return d.FirstCourse
	case CourseSecond:
		return d.SecondCourse
	case CourseDessert:
		return d.Dessert
	}
	return nil
}

// SetCourse stores dishID for c. An empty id clears the slot.
func (d *DailyMenu) SetCourse(c Course, dishID string) {
	var v *string
	if dishID = strings.TrimSpace(dishID); dishID != "" {
		v = &dishID
	}
	switch c {
	case CourseFirst:
		d.FirstCourse = v
	case CourseSecond:
		d.SecondCourse = v
	case CourseDessert:
		d.Dessert = v
	}
}

// DayKey drops time of day and zone, keeping the calendar day as seen in t's location.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// CalendarDay returns midnight UTC of t's calendar day.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a yyyy-mm-dd key.
func ParseDay(raw string) (time.Time, error) {
	t, err := time.Parse(DayLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must look like 2024-06-01", ErrValidation)
	}
	return t, nil
}
