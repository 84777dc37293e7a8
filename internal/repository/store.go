package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups every content repository over one database handle so that multi-collection
// writes can share a transaction.
type Store struct {
	db *gorm.DB

	AICourses     AICourseRepository
	AILessons     AILessonRepository
	Courses       CourseRepository
	Lessons       LessonRepository
	Challenges    ChallengeRepository
	ChallengeDays ChallengeDayRepository
	Prompts       PromptRepository
	Payments      PaymentRepository
	Certificates  CertificateTemplateRepository
	Uploads       UploadRepository
}

// NewStore wires all repositories to db.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		AICourses:     NewAICourseRepository(db),
		AILessons:     NewAILessonRepository(db),
		Courses:       NewCourseRepository(db),
		Lessons:       NewLessonRepository(db),
		Challenges:    NewChallengeRepository(db),
		ChallengeDays: NewChallengeDayRepository(db),
		Prompts:       NewPromptRepository(db),
		Payments:      NewPaymentRepository(db),
		Certificates:  NewCertificateTemplateRepository(db),
		Uploads:       NewUploadRepository(db),
	}
}

// Transaction runs fn against a Store bound to a single database transaction. Returning an
// error from fn rolls back every write made through tx.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// Ping verifies the underlying connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
