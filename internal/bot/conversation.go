package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"menu-planner/internal/model"
	"menu-planner/internal/service"
)

type flow int

const (
	flowNone flow = iota
	flowSignUp
	flowSignIn
	flowDish
	flowMenu
	flowPlan
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageEmail
	stagePassword
	stageName
	stageDescription
	stageCourse
	stageDate
	stageMenu
	stageDish
)

// option is a numbered choice offered on a reply keyboard.
type option struct {
	label string
	id    string
}

type conversationState struct {
	flow  flow
	stage conversationStage

	email string

	// dish and menu editing; editing holds the id of an existing record
	editing     string
	lang        int
	name        model.LocalizedText
	description model.LocalizedText
	course      model.Course

	// daily plan
	date      time.Time
	selection service.Selection
	courseIdx int
	options   []option
}

// currentLanguage is the locale being asked for in name and description stages.
func (s *conversationState) currentLanguage() model.Language {
	return model.Languages[s.lang]
}

func (s *conversationState) planCourse() model.Course {
	return model.Courses[s.courseIdx]
}

func newOptions[T any](items []T, name func(T) string, id func(T) string) []option {
	out := make([]option, 0, len(items))
	for i, item := range items {
		out = append(out, option{
			label: fmt.Sprintf("%d. %s", i+1, shortTitle(name(item), 28)),
			id:    id(item),
		})
	}
	return out
}

func optionLabels(opts []option) []string {
	labels := make([]string, 0, len(opts))
	for _, o := range opts {
		labels = append(labels, o.label)
	}
	return labels
}

// pick matches a keyboard label or a bare number against opts.
func pick(opts []option, text string) (string, bool) {
	text = strings.TrimSpace(text)
	for _, o := range opts {
		if o.label == text {
			return o.id, true
		}
	}
	if n, err := strconv.Atoi(strings.TrimSuffix(text, ".")); err == nil && n >= 1 && n <= len(opts) {
		return opts[n-1].id, true
	}
	return "", false
}
