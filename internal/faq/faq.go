package faq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/ecom-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FAQDTO struct {
	ID        uuid.UUID `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateFAQInput struct {
	Question string `json:"question" validate:"required,max=500"`
	Answer   string `json:"answer" validate:"required,max=4000"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, faq *models.FAQ) error {
	if faq.ID == uuid.Nil {
		faq.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(faq).Error
}

func (r *Repository) List(ctx context.Context) ([]models.FAQ, error) {
	var rows []models.FAQ
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.FAQ{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Service manages the store-wide FAQ.
type Service interface {
	Create(ctx context.Context, input CreateFAQInput) (*FAQDTO, error)
	List(ctx context.Context) ([]FAQDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("faq repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateFAQInput) (*FAQDTO, error) {
	question := strings.TrimSpace(input.Question)
	answer := strings.TrimSpace(input.Answer)
	if question == "" || answer == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "question and answer are required")
	}
	row := &models.FAQ{Question: question, Answer: answer}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create faq")
	}
	dto := fromModel(*row)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]FAQDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list faqs")
	}
	out := make([]FAQDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "faq not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete faq")
	}
	return nil
}

func fromModel(f models.FAQ) FAQDTO {
	return FAQDTO{ID: f.ID, Question: f.Question, Answer: f.Answer, CreatedAt: f.CreatedAt}
}
