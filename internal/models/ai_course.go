package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Level groups an ordered run of AI lessons inside a mastery path.
type Level struct {
	Level     int      `json:"level"`
	Topic     string   `json:"topic"`
	Lessons   []string `json:"lessons"`
	CanRead   bool     `json:"canRead"`
	CanListen bool     `json:"canListen"`
}

// AICourse is a mastery path for a specific AI tool, organised as levels of lessons.
type AICourse struct {
	Document
	Title       string                     `gorm:"size:255;not null" json:"title"`
	Description string                     `gorm:"type:text" json:"description"`
	Tool        string                     `gorm:"size:120;index" json:"tool"`
	Thumbnail   string                     `gorm:"type:text" json:"thumbnail"`
	Level       string                     `gorm:"size:32" json:"level"`
	Status      string                     `gorm:"size:32;index;default:'draft'" json:"status"`
	Tree        datatypes.JSONSlice[Level] `json:"tree"`
}

// AILesson is a single lesson of a mastery path.
type AILesson struct {
	Document
	AICourseID string                      `gorm:"column:ai_course_id;size:36;index;uniqueIndex:idx_ai_lessons_course_order,priority:1;not null" json:"aiCourseId"`
	Title      string                      `gorm:"size:255;not null" json:"title"`
	Content    string                      `gorm:"type:text;not null" json:"content"`
	Order      int                         `gorm:"column:sort_order;uniqueIndex:idx_ai_lessons_course_order,priority:2" json:"order"`
	Photos     datatypes.JSONSlice[string] `json:"photos"`
	Media      string                      `gorm:"type:text" json:"media"`
	CanRead    bool                        `json:"canRead"`
	CanListen  bool                        `json:"canListen"`
}

// BeforeSave keeps enum-like columns in their canonical form.
func (c *AICourse) BeforeSave(tx *gorm.DB) error {
	c.Level = NormalizeCourseLevel(c.Level)
	c.Status = NormalizeStatus(c.Status)
	if c.Tree == nil {
		c.Tree = datatypes.JSONSlice[Level]{}
	}
	return nil
}

// AfterFind replaces a null tree with an empty one.
func (c *AICourse) AfterFind(tx *gorm.DB) error {
	if c.Tree == nil {
		c.Tree = datatypes.JSONSlice[Level]{}
	}
	for i := range c.Tree {
		if c.Tree[i].Lessons == nil {
			c.Tree[i].Lessons = []string{}
		}
	}
	return nil
}

// BeforeSave ensures photos are stored as an array.
func (l *AILesson) BeforeSave(tx *gorm.DB) error {
	if l.Photos == nil {
		l.Photos = datatypes.JSONSlice[string]{}
	}
	return nil
}

// TableName pins the table name for mastery paths.
func (AICourse) TableName() string { return "ai_courses" }

// TableName pins the table name for mastery path lessons.
func (AILesson) TableName() string { return "ai_lessons" }
