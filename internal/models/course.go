package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Course is a classic course made of a flat, ordered list of lessons.
type Course struct {
	Document
	Title       string                      `gorm:"size:255;not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	Category    string                      `gorm:"size:120;index" json:"category"`
	Level       string                      `gorm:"size:32" json:"level"`
	Price       float64                     `json:"price"`
	Thumbnail   string                      `gorm:"type:text" json:"thumbnail"`
	Status      string                      `gorm:"size:32;index;default:'draft'" json:"status"`
	Lessons     datatypes.JSONSlice[string] `json:"lessons"`
}

// Lesson belongs to a Course.
type Lesson struct {
	Document
	CourseID string `gorm:"size:36;index;uniqueIndex:idx_lessons_course_order,priority:1;not null" json:"courseId"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	VideoURL string `gorm:"size:512" json:"videoUrl"`
	Duration int    `json:"duration"`
	Order    int    `gorm:"column:sort_order;uniqueIndex:idx_lessons_course_order,priority:2" json:"order"`
}

// BeforeSave normalises course enums.
func (c *Course) BeforeSave(tx *gorm.DB) error {
	c.Level = NormalizeCourseLevel(c.Level)
	c.Status = NormalizeStatus(c.Status)
	if c.Lessons == nil {
		c.Lessons = datatypes.JSONSlice[string]{}
	}
	return nil
}
