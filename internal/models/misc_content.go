package models

import (
	"strings"

	"gorm.io/gorm"
)

// Prompt is a reusable prompt template for an AI tool.
type Prompt struct {
	Document
	Title    string   `gorm:"size:255;not null" json:"title"`
	Content  string   `gorm:"type:text;not null" json:"content"`
	Category string   `gorm:"size:120;index" json:"category"`
	Tool     string   `gorm:"size:120;index" json:"tool"`
	TagsRaw  string   `gorm:"column:tags;type:text" json:"-"`
	Status   string   `gorm:"size:32;index;default:'draft'" json:"status"`
	Tags     []string `gorm:"-" json:"tags"`
}

// Payment records a purchase of a course.
type Payment struct {
	Document
	UserEmail string  `gorm:"size:160;index;not null" json:"userEmail"`
	CourseID  string  `gorm:"size:36;index" json:"courseId"`
	Amount    float64 `gorm:"not null" json:"amount"`
	Currency  string  `gorm:"size:3;not null" json:"currency"`
	Status    string  `gorm:"size:32;index;not null" json:"status"`
	Provider  string  `gorm:"size:64" json:"provider"`
	Reference string  `gorm:"size:128;index" json:"reference"`
}

// CertificateTemplate describes how a completion certificate is rendered.
type CertificateTemplate struct {
	Document
	Name          string `gorm:"size:160;not null" json:"name"`
	CourseID      string `gorm:"size:36;index" json:"courseId"`
	Title         string `gorm:"size:255" json:"title"`
	Body          string `gorm:"type:text" json:"body"`
	SignatureName string `gorm:"size:160" json:"signatureName"`
	Background    string `gorm:"type:text" json:"background"`
	IsDefault     bool   `gorm:"index" json:"isDefault"`
}

// BeforeSave encodes prompt tags.
func (p *Prompt) BeforeSave(tx *gorm.DB) error {
	p.TagsRaw = encodeTags(p.Tags)
	p.Status = NormalizeStatus(p.Status)
	return nil
}

// AfterFind hydrates prompt tags.
func (p *Prompt) AfterFind(tx *gorm.DB) error {
	p.Tags = decodeTags(p.TagsRaw)
	return nil
}

// BeforeSave normalises payment fields.
func (p *Payment) BeforeSave(tx *gorm.DB) error {
	p.Status = NormalizePaymentStatus(p.Status)
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	return nil
}
