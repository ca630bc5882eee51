package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// JobStatus enumerates the lifecycle states of a generation request.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether no further transitions may occur.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Orientation enumerates supported video orientations.
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
)

// VideoSize enumerates the resolution tiers the provider accepts.
type VideoSize string

const (
	VideoSizeSmall VideoSize = "small" // 720p
	VideoSizeLarge VideoSize = "large" // 1080p
)

// AllowedDurations is the fixed set of clip lengths, in seconds.
var AllowedDurations = []int{5, 10, 15}

const DefaultDuration = 10

// VideoSettings carries the generation parameters submitted with a prompt.
type VideoSettings struct {
	Orientation Orientation `json:"orientation"`
	Size        VideoSize   `json:"size"`
	Duration    int         `json:"duration"`
}

// Normalize fills defaults and maps the documented aliases
// (standard -> small, high -> large) onto the provider vocabulary.
func (s *VideoSettings) Normalize() {
	switch strings.ToLower(string(s.Orientation)) {
	case string(OrientationPortrait):
		s.Orientation = OrientationPortrait
	default:
		s.Orientation = OrientationLandscape
	}
	switch strings.ToLower(string(s.Size)) {
	case string(VideoSizeSmall), "standard":
		s.Size = VideoSizeSmall
	default:
		s.Size = VideoSizeLarge
	}
	if s.Duration == 0 {
		s.Duration = DefaultDuration
	}
}

// Validate checks the settings against the fixed allowed sets. Call after
// Normalize; only the duration can still be out of range at that point.
func (s VideoSettings) Validate() error {
	for _, d := range AllowedDurations {
		if s.Duration == d {
			return nil
		}
	}
	return ErrInvalidSettings
}

// VideoJob is the persisted record of one generation request.
type VideoJob struct {
	ID             string
	AccountID      string
	Prompt         string
	Settings       VideoSettings
	ExternalTaskID string
	Status         JobStatus
	ResultURL      string
	ThumbnailURL   string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

var titleCaser = cases.Title(language.English)

// DisplayTitle derives a short gallery caption from the prompt.
func (j VideoJob) DisplayTitle() string {
	prompt := strings.Join(strings.Fields(j.Prompt), " ")
	words := strings.Fields(prompt)
	if len(words) > 6 {
		prompt = strings.Join(words[:6], " ") + "…"
	}
	return titleCaser.String(prompt)
}
