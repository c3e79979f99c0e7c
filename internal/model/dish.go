package model

import (
	"fmt"
	"strings"
	"time"
)

// Course is the slot a dish is served in.
type Course string

const (
	CourseFirst   Course = "first"
	CourseSecond  Course = "second"
	CourseDessert Course = "dessert"
)

// Courses lists courses in serving order.
var Courses = []Course{CourseFirst, CourseSecond, CourseDessert}

// ParseCourse accepts a course name in any case.
func ParseCourse(raw string) (Course, error) {
	c := Course(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown course %q", ErrValidation, raw)
	}
	return c, nil
}

func (c Course) Valid() bool {
	switch c {
	case CourseFirst, CourseSecond, CourseDessert:
		return true
	}
	return false
}

// Label returns the course name in lang.
func (c Course) Label(lang Language) string {
	labels := map[Course]LocalizedText{
		CourseFirst:   {En: "First", Es: "Primero", Ca: "Primer"},
		CourseSecond:  {En: "Second", Es: "Segundo", Ca: "Segon"},
		CourseDessert: {En: "Dessert", Es: "Postre", Ca: "Postres"},
	}
	return labels[c].Get(lang)
}

// Dish is a food item in one course, named in every language.
type Dish struct {
	ID        string        `gorm:"primaryKey;size:36" json:"id"`
	UserID    string        `gorm:"index;size:36" json:"userId"`
	Name      LocalizedText `gorm:"embedded;embeddedPrefix:name_" json:"name"`
	Type      Course        `gorm:"size:16;index" json:"type"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
