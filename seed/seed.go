package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/irsalhamdi/prep-center/core/course"
	"github.com/irsalhamdi/prep-center/core/material"
	"github.com/irsalhamdi/prep-center/database"
	"github.com/irsalhamdi/prep-center/validate"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var catalogNS = uuid.MustParse("3b1f7f3e-4c57-4a52-9c6a-5f0d8f6f2a10")

// CourseID is the stable id the seed gives the course titled title, so reseeding keeps payments
// pointing at the same rows.
func CourseID(title string) string {
	return uuid.NewSHA1(catalogNS, []byte(title)).String()
}

type seedMaterial struct {
	course      string
	title       string
	typ         string
	description string
}

const (
	ielts = "IELTS Academic Preparation"
	sat   = "SAT Complete Course"
)

var courses = []course.Course{
	{
		Title:       ielts,
		Type:        "IELTS",
		Description: "Comprehensive IELTS preparation course covering all sections",
		Level:       "Intermediate to Advanced",
		Duration:    "8 недель",
		Price:       decimal.NewFromInt(120000),
	},
	{
		Title:       sat,
		Type:        "SAT",
		Description: "Complete preparation for SAT Math and Verbal sections",
		Level:       "High School",
		Duration:    "12 недель",
		Price:       decimal.NewFromInt(180000),
	},
	{
		Title:       "General English",
		Type:        "General English",
		Description: "Foundation course covering basic English grammar, vocabulary, and conversation",
		Level:       "Beginner",
		Duration:    "в месяц",
		Price:       decimal.NewFromInt(45000),
	},
	{
		Title:       "Business English",
		Type:        "General English",
		Description: "Professional English course focusing on business communication",
		Level:       "Intermediate",
		Duration:    "в месяц",
		Price:       decimal.NewFromInt(50000),
	},
}

var materials = []seedMaterial{
	{ielts, "Cambridge_19", "IELTS Reading", "IELTS practice test from Cambridge."},
	{ielts, "MostCommonWords", "Vocabulary", "Common IELTS vocabulary words."},
	{sat, "CollegePanda", "SAT Math", "College Panda SAT prep book."},
	{sat, "desmos_guide", "SAT Math", "Using Desmos for SAT Math (Part 1)."},
	{sat, "desmos_guide2", "SAT Math", "Using Desmos for SAT Math (Part 2)."},
	{sat, "Prepros_150hard", "SAT Math", "150 hard practice questions for SAT."},
	{sat, "PrincetonReview", "SAT Math", "Princeton Review SAT prep book."},
	{sat, "Erica_Grammar_DSAT", "Grammar", "Grammar practice for Digital SAT."},
	{sat, "Erica_Reading_DSAT", "SAT Verbal", "Reading practice for Digital SAT."},
	{sat, "Erica_Vocabulary", "Vocabulary", "Vocabulary practice for SAT/IELTS."},
}

func Catalog(ctx context.Context, db *sqlx.DB) (int, int, error) {
	now := time.Now().UTC()

	err := database.Transaction(db, func(tx sqlx.ExtContext) error {
		if err := material.DeleteAll(ctx, tx); err != nil {
			return err
		}

		for _, c := range courses {
			c.ID = CourseID(c.Title)
			c.CreatedAt = now
			c.UpdatedAt = now

			if err := course.Upsert(ctx, tx, c); err != nil {
				return err
			}
		}

		for _, sm := range materials {
			m := material.Material{
				ID:          validate.GenerateID(),
				CourseID:    CourseID(sm.course),
				Title:       sm.title,
				Type:        sm.typ,
				Description: sm.description,
				CreatedAt:   now,
			}

			if err := material.Create(ctx, tx, m); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("seeding catalog: %w", err)
	}

	return len(courses), len(materials), nil
}
