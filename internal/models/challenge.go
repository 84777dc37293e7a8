package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Challenge is a fixed-duration course variant organised as numbered days.
type Challenge struct {
	Document
	Title       string                      `gorm:"size:255;not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	Duration    int                         `gorm:"not null" json:"duration"`
	Thumbnail   string                      `gorm:"type:text" json:"thumbnail"`
	Status      string                      `gorm:"size:32;index;default:'draft'" json:"status"`
	Days        datatypes.JSONSlice[string] `json:"days"`
}

// Question is a multiple-choice check attached to a challenge day.
type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"answer"`
}

// ChallengeDay holds the content for one day of a challenge.
type ChallengeDay struct {
	Document
	ChallengeID string                        `gorm:"size:36;not null;uniqueIndex:idx_challenge_day" json:"challengeId"`
	Day         int                           `gorm:"not null;uniqueIndex:idx_challenge_day" json:"day"`
	Title       string                        `gorm:"size:255;not null" json:"title"`
	Content     string                        `gorm:"type:text" json:"content"`
	Tasks       datatypes.JSONSlice[string]   `json:"tasks"`
	Questions   datatypes.JSONSlice[Question] `json:"questions"`
}

// BeforeSave normalises challenge status.
func (c *Challenge) BeforeSave(tx *gorm.DB) error {
	c.Status = NormalizeStatus(c.Status)
	if c.Days == nil {
		c.Days = datatypes.JSONSlice[string]{}
	}
	return nil
}

// BeforeSave keeps JSON arrays non-null.
func (d *ChallengeDay) BeforeSave(tx *gorm.DB) error {
	if d.Tasks == nil {
		d.Tasks = datatypes.JSONSlice[string]{}
	}
	if d.Questions == nil {
		d.Questions = datatypes.JSONSlice[Question]{}
	}
	return nil
}
