package database

import (
	"fmt"
	"log"
	"os"

	"elearn/config"
	"elearn/models"
	courseModels "elearn/models/course"
	examModels "elearn/models/exam"
	progressModels "elearn/models/progress"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb establishes a connection to PostgreSQL
func ConnectDb() {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		config.AppConfig.DBHost,
		config.AppConfig.DBUser,
		config.AppConfig.DBPassword,
		config.AppConfig.DBName,
		config.AppConfig.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		os.Exit(2)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	RunMigrations(db)

	Database = DbInstance{Db: db}
}

// RunMigrations performs database migrations
func RunMigrations(db *gorm.DB) {
	log.Println("Running Migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.ExaminationType{},
		&models.Subject{},
		&courseModels.Course{},
		&courseModels.Module{},
		&courseModels.Lesson{},
		&courseModels.Enrollment{},
		&courseModels.CourseRating{},
		&examModels.Exam{},
		&examModels.Question{},
		&examModels.Choice{},
		&examModels.ExamAttempt{},
		&examModels.Answer{},
		&examModels.Assignment{},
		&examModels.AssignmentQuestion{},
		&examModels.AssignmentChoice{},
		&examModels.AssignmentSubmission{},
		&examModels.AssignmentAnswer{},
		&progressModels.CourseProgress{},
		&progressModels.CompletedLesson{},
		&progressModels.LessonProgress{},
		&progressModels.ExamProgress{},
	)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migrations completed successfully.")
}
