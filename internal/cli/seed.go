package cli

import (
	"fmt"
	"os"

	"assessment-service/internal/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// quizDocument is the YAML authoring format for a quiz.
type quizDocument struct {
	ID              string             `yaml:"id"`
	Title           string             `yaml:"title"`
	Description     string             `yaml:"description"`
	DurationMinutes int                `yaml:"duration_minutes"`
	Questions       []questionDocument `yaml:"questions"`
}

type questionDocument struct {
	ID           string   `yaml:"id"`
	Text         string   `yaml:"text"`
	Options      []string `yaml:"options"`
	CorrectIndex *int     `yaml:"correct_index"`
	CorrectText  string   `yaml:"correct_text"`
	ImageURL     string   `yaml:"image_url"`
}

func (d quizDocument) toQuiz(defaultID string) domain.Quiz {
	quiz := domain.Quiz{
		ID:              d.ID,
		Title:           d.Title,
		Description:     d.Description,
		DurationMinutes: d.DurationMinutes,
		Questions:       make([]domain.Question, 0, len(d.Questions)),
	}
	if quiz.ID == "" {
		quiz.ID = defaultID
	}
	for _, q := range d.Questions {
		correct := domain.NoCorrectIndex
		if q.CorrectIndex != nil {
			correct = *q.CorrectIndex
		}
		id := q.ID
		if id == "" {
			id = uuid.NewString()
		}
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:           id,
			Text:         q.Text,
			Options:      q.Options,
			CorrectIndex: correct,
			CorrectText:  q.CorrectText,
			ImageURL:     q.ImageURL,
		})
	}
	return quiz
}

func readQuizFile(path, defaultID string) (domain.Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Quiz{}, err
	}
	return parseQuizDocument(data, defaultID)
}

func parseQuizDocument(data []byte, defaultID string) (domain.Quiz, error) {
	var doc quizDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return domain.Quiz{}, fmt.Errorf("parse quiz document: %w", err)
	}
	return doc.toQuiz(defaultID), nil
}

// NewSeedQuizCmd loads a quiz YAML document into the configured store.
func NewSeedQuizCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-quiz <file.yaml>",
		Short: "Validate a quiz document and store it as the active quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()
			if cfg.Postgres.URL == "" {
				return errPostgresRequired
			}

			quiz, err := readQuizFile(args[0], cfg.Quiz.ActiveID)
			if err != nil {
				return err
			}
			b, err := openBackends(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer b.Close()

			if err := b.saveQuiz(cmd.Context(), quiz); err != nil {
				return err
			}
			logger.Info("quiz seeded", zap.String("quiz_id", quiz.ID), zap.Int("questions", len(quiz.Questions)))
			return nil
		},
	}
}
