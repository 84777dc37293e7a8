package models

// UploadRecord stores metadata about media pushed to external storage.
type UploadRecord struct {
	Document
	UploadedBy string `gorm:"size:64;index" json:"uploadedBy"`
	Kind       string `gorm:"size:16;not null" json:"kind"`
	FileName   string `gorm:"size:255;not null" json:"fileName"`
	URL        string `gorm:"size:512;not null" json:"url"`
	MimeType   string `gorm:"size:128;not null" json:"mimeType"`
	SizeBytes  int64  `gorm:"not null" json:"sizeBytes"`
	Checksum   string `gorm:"size:128;index" json:"checksum"`
}

// All lists every model migrated at startup.
func All() []interface{} {
	return []interface{}{
		&AICourse{},
		&AILesson{},
		&Course{},
		&Lesson{},
		&Challenge{},
		&ChallengeDay{},
		&Prompt{},
		&Payment{},
		&CertificateTemplate{},
		&UploadRecord{},
	}
}
