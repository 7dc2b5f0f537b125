package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/balkashynov/kanban/internal/models"
)

var (
	labelRegex    = regexp.MustCompile(`#([a-zA-Z0-9_,-]+)`)
	priorityRegex = regexp.MustCompile(`(^|\s)\+([a-zA-Z]+|[0-9])(\s|$)`)
	dueRegex      = regexp.MustCompile(`due:([^\s]+)`)
)

// ParsedTask represents a task parsed from natural language
type ParsedTask struct {
	Title    string
	Label    string
	Priority string // normalized priority, empty when not given
	Deadline string // YYYY-MM-DD, empty when not given
	Errors   []string
}

// ParseTitle extracts metadata from a task title using natural syntax
// Syntax: "Task title #label +priority due:3days"
func ParseTitle(input string, now time.Time) ParsedTask {
	result := ParsedTask{
		Title:  input,
		Errors: []string{},
	}

	// Extract due date first so "due:+3d" is not read as a priority
	if m := dueRegex.FindStringSubmatch(input); len(m) > 1 {
		deadline, err := ParseDeadline(m[1], now)
		if err != nil {
			result.Errors = append(result.Errors, "Invalid due date '"+m[1]+"': "+err.Error())
		} else {
			result.Deadline = deadline
		}
		input = dueRegex.ReplaceAllString(input, "")
	}

	// Labels (#label or #a,b); several are joined into one label
	var labels []string
	for _, match := range labelRegex.FindAllStringSubmatch(input, -1) {
		for _, label := range strings.Split(match[1], ",") {
			if label = strings.TrimSpace(label); label != "" {
				labels = append(labels, label)
			}
		}
	}
	result.Label = strings.Join(labels, ", ")
	input = labelRegex.ReplaceAllString(input, "")

	// Priority (+high, +3, +med)
	if m := priorityRegex.FindStringSubmatch(input); len(m) > 2 {
		if p, ok := models.ParsePriority(m[2]); ok {
			result.Priority = string(p)
		} else {
			result.Errors = append(result.Errors, "Invalid priority '"+m[2]+"'. Use: low, medium, high, 1, 2, or 3")
		}
		input = priorityRegex.ReplaceAllString(input, " ")
	}

	// Clean up the title (remove extra spaces)
	result.Title = strings.Join(strings.Fields(input), " ")
	return result
}
