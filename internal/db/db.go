package db

import (
	"log"

	"applyflow/internal/appform"
	"applyflow/internal/config"
	"applyflow/internal/event"
	"applyflow/internal/response"
	"applyflow/internal/review"
	"applyflow/internal/user"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) error {
	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		return err
	}

	// Auto-migrate user and event models
	if err := db.AutoMigrate(&user.AppUser{}, &event.Event{}, &event.EventRole{}); err != nil {
		return err
	}

	// Auto-migrate application form tree
	if err := db.AutoMigrate(
		&appform.ApplicationForm{},
		&appform.Section{},
		&appform.SectionTranslation{},
		&appform.Question{},
		&appform.QuestionTranslation{},
	); err != nil {
		return err
	}

	// Auto-migrate responses and review models
	if err := db.AutoMigrate(
		&response.Response{},
		&response.Answer{},
		&review.ReviewForm{},
		&review.ReviewConfiguration{},
		&review.ReviewQuestion{},
		&review.ReviewQuestionTranslation{},
		&review.ResponseReviewer{},
		&review.ReviewResponse{},
		&review.ReviewScore{},
	); err != nil {
		return err
	}

	DB = db
	log.Printf("Database connected and migrated")
	return nil
}
