package events

import "github.com/john-paul-ruf/nft-studio/internal/event/topic"

// Project lifecycle topics.
const (
	TopicProjectNew           topic.Topic = "project:new"
	TopicProjectOpen          topic.Topic = "project:open"
	TopicProjectResume        topic.Topic = "project:resume"
	TopicProjectResumeStart   topic.Topic = "project:resume:start"
	TopicProjectResumeSuccess topic.Topic = "project:resume:success"
	TopicProjectResumeFailed  topic.Topic = "project:resume:failed"
	TopicProjectUpdated       topic.Topic = "project:updated"
	TopicProjectLoaded        topic.Topic = "project:loaded"
)

// ProjectNew starts a fresh project. Zero fields fall back to preferences.
type ProjectNew struct {
	Name       string
	Resolution string
	Frames     int
	Horizontal *bool
}

// ProjectOpen loads a project file.
type ProjectOpen struct {
	Path string
}

// ProjectResume resumes from a render settings file.
type ProjectResume struct {
	SettingsPath string
}

// ProjectResumeStart is emitted before the settings file is read.
type ProjectResumeStart struct {
	SettingsPath string
}

// ProjectResumeSuccess is emitted once state has been replaced.
type ProjectResumeSuccess struct {
	SettingsPath string
	ProjectName  string
}

// ProjectResumeFailed is emitted when resuming fails.
type ProjectResumeFailed struct {
	SettingsPath string
	Error        string
}

// ProjectUpdated is emitted after every project state mutation.
type ProjectUpdated struct {
	// Field names the part of the project that changed ("effects",
	// "resolution", "frames", "orientation", "colorScheme", "all").
	Field string
}

// ProjectLoaded is emitted after a project has been opened or created.
type ProjectLoaded struct {
	Path        string
	ProjectName string
}
