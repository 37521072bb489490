// Package model defines the RetireWise entity types shared by both storage
// backends. All types serialize to the same JSON document shape regardless of
// which backend holds them.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

// Project lifecycle states.
const (
	StatusPlanning  ProjectStatus = "planning"
	StatusActive    ProjectStatus = "active"
	StatusPaused    ProjectStatus = "paused"
	StatusCompleted ProjectStatus = "completed"
	StatusArchived  ProjectStatus = "archived"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusPlanning, StatusActive, StatusPaused, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// IsActive reports whether projects in this state count as "active" for the
// active-projects filter. Planning projects are included so that freshly
// created projects show up before their first logged hour.
func (s ProjectStatus) IsActive() bool {
	return s == StatusActive || s == StatusPlanning
}

// Project is a tracked endeavor with a derived running total of logged hours.
//
// TotalHoursLogged is maintained incrementally by the unified facade: it always
// equals the sum of Duration over the time logs referencing this project and is
// never recomputed from scratch on read.
type Project struct {
	ID               string        `json:"id,omitempty"`
	Name             string        `json:"name"`
	Type             string        `json:"type,omitempty"`
	Description      string        `json:"description,omitempty"`
	Goals            []string      `json:"goals,omitempty"`
	Motivation       string        `json:"motivation,omitempty"`
	Tags             []string      `json:"tags,omitempty"`
	Color            string        `json:"color,omitempty"`
	Icon             string        `json:"icon,omitempty"`
	Status           ProjectStatus `json:"status"`
	TargetHours      *float64      `json:"targetHours,omitempty"`
	TotalHoursLogged float64       `json:"totalHoursLogged"`
	LastWorkedAt     *time.Time    `json:"lastWorkedAt,omitempty"`
	CreatedAt        *time.Time    `json:"createdAt,omitempty"`
}

// TimeLog records hours worked against a single project.
//
// ProjectName, ProjectColor and ProjectIcon are denormalized join fields filled
// in by the facade on bulk reads; they are never persisted.
type TimeLog struct {
	ID        string    `json:"id,omitempty"`
	ProjectID string    `json:"projectId"`
	Date      time.Time `json:"date"`
	Duration  float64   `json:"duration"`
	Notes     string    `json:"notes,omitempty"`

	ProjectName  string `json:"projectName,omitempty"`
	ProjectColor string `json:"projectColor,omitempty"`
	ProjectIcon  string `json:"projectIcon,omitempty"`
}

// EntryType classifies a journal entry.
type EntryType string

// Journal entry types.
const (
	EntryReflection EntryType = "reflection"
	EntryIdea       EntryType = "idea"
	EntryDecision   EntryType = "decision"
	EntryLearning   EntryType = "learning"
	EntryGratitude  EntryType = "gratitude"
	EntryChallenge  EntryType = "challenge"
	EntryMilestone  EntryType = "milestone"
)

// Sentiment is the optional mood attached to a journal entry.
type Sentiment string

// Journal entry sentiments. The zero value means unset.
const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// JournalEntry is a free-form note, optionally tied to a project.
type JournalEntry struct {
	ID        string     `json:"id,omitempty"`
	Title     string     `json:"title,omitempty"`
	Content   string     `json:"content"`
	ProjectID string     `json:"projectId,omitempty"`
	EntryType EntryType  `json:"entryType"`
	Sentiment Sentiment  `json:"sentiment,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	Favorite  bool       `json:"favorite,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Flag is a bool that tolerates the 0/1 numeric encoding some backends use
// for booleans. It always marshals back to a native JSON bool, so documents
// are normalized on their next write.
type Flag bool

// UnmarshalJSON accepts true/false, 0/1 and null.
func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "null":
		*f = false
		return nil
	case "true":
		*f = true
		return nil
	case "false":
		*f = false
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flag must be a bool or 0/1, got %s", data)
	}
	*f = n != 0
	return nil
}

// MarshalJSON always emits a native bool.
func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

// Bool returns the flag as a plain bool.
func (f Flag) Bool() bool { return bool(f) }

// Insight is a generated observation surfaced to the user. Insights are never
// edited; the only mutation is dismissal, which is a soft delete applied as a
// filter on read.
type Insight struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Dismissed   Flag      `json:"dismissed"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Conversation is a chat history with the advisor. The message payload is
// opaque to the data layer.
type Conversation struct {
	ID        string          `json:"id,omitempty"`
	Title     string          `json:"title,omitempty"`
	Messages  json.RawMessage `json:"messages,omitempty"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
}
