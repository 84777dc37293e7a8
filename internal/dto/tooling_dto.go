package dto

import "time"

// ContentEvent is published whenever content changes.
type ContentEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resourceId"`
	Message    string    `json:"message"`
	At         time.Time `json:"at"`
}

// UploadResponse describes a stored media file.
type UploadResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	URL       string    `json:"url"`
	FileName  string    `json:"fileName"`
	MimeType  string    `json:"mimeType"`
	SizeBytes int64     `json:"sizeBytes"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"createdAt"`
}

// CleanupReport summarises one orphan sweep.
type CleanupReport struct {
	AILessonsRemoved      int64     `json:"aiLessonsRemoved"`
	LessonsRemoved        int64     `json:"lessonsRemoved"`
	DaysRemoved           int64     `json:"daysRemoved"`
	AICourseRefsDetached  int       `json:"aiCourseRefsDetached"`
	CourseRefsDetached    int       `json:"courseRefsDetached"`
	ChallengeRefsDetached int       `json:"challengeRefsDetached"`
	StartedAt             time.Time `json:"startedAt"`
	FinishedAt            time.Time `json:"finishedAt"`
}

// SeedLesson describes one lesson inside a seed file.
type SeedLesson struct {
	Title     string   `yaml:"title" json:"title"`
	Content   string   `yaml:"content" json:"content"`
	Photos    []string `yaml:"photos" json:"photos"`
	Media     string   `yaml:"media" json:"media"`
	CanRead   bool     `yaml:"canRead" json:"canRead"`
	CanListen bool     `yaml:"canListen" json:"canListen"`
}

// SeedLevel describes one level inside a seed file.
type SeedLevel struct {
	Topic     string       `yaml:"topic" json:"topic"`
	CanRead   bool         `yaml:"canRead" json:"canRead"`
	CanListen bool         `yaml:"canListen" json:"canListen"`
	Lessons   []SeedLesson `yaml:"lessons" json:"lessons"`
}

// SeedAICourse describes one mastery path inside a seed file.
type SeedAICourse struct {
	Title       string      `yaml:"title" json:"title"`
	Description string      `yaml:"description" json:"description"`
	Tool        string      `yaml:"tool" json:"tool"`
	Thumbnail   string      `yaml:"thumbnail" json:"thumbnail"`
	Level       string      `yaml:"level" json:"level"`
	Status      string      `yaml:"status" json:"status"`
	Levels      []SeedLevel `yaml:"levels" json:"levels"`
}

// SeedDocument is the root of a seed file.
type SeedDocument struct {
	AICourses []SeedAICourse `yaml:"aiCourses" json:"aiCourses"`
}

// SeedReport summarises one seed run.
type SeedReport struct {
	AICourses []string `json:"aiCourses"`
	AILessons int      `json:"aiLessons"`
}
