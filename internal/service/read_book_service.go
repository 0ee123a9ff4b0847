package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dom/reader/internal/domain"
	"github.com/dom/reader/internal/repository"
)

type ReadBookService struct {
	bookRepo repository.ReadBookRepository
	now      func() time.Time
}

func NewReadBookService(bookRepo repository.ReadBookRepository) *ReadBookService {
	return &ReadBookService{
		bookRepo: bookRepo,
		now:      time.Now,
	}
}

type ReadBookInput struct {
	ID                int64
	Name              string
	ExternalCatalogID string
	StartDate         *time.Time
	EndDate           *time.Time
}

func (s *ReadBookService) List(ctx context.Context, userID string) ([]*domain.ReadBook, error) {
	return s.bookRepo.ListByUser(ctx, userID)
}

func (s *ReadBookService) Get(ctx context.Context, userID string, id int64) (*domain.ReadBook, error) {
	book, err := s.bookRepo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReadBookNotFound
		}
		return nil, err
	}
	return book, nil
}

func (s *ReadBookService) Create(ctx context.Context, userID string, input ReadBookInput) (*domain.ReadBook, error) {
	book := &domain.ReadBook{
		UserID:            userID,
		Name:              input.Name,
		ExternalCatalogID: input.ExternalCatalogID,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
	}
	if err := book.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	book.Stamp(userID, s.now())

	return s.bookRepo.InsertOne(ctx, book)
}

// Update replaces the client-editable fields of an existing book.
func (s *ReadBookService) Update(ctx context.Context, userID string, input ReadBookInput) (*domain.ReadBook, error) {
	book, err := s.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	book.Name = input.Name
	book.ExternalCatalogID = input.ExternalCatalogID
	book.StartDate = input.StartDate
	book.EndDate = input.EndDate
	if err := book.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	book.Stamp(userID, s.now())

	updated, err := s.bookRepo.UpdateOne(ctx, book)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrReadBookNotFound
	}
	return book, nil
}

func (s *ReadBookService) Delete(ctx context.Context, userID string, id int64) error {
	book, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	deleted, err := s.bookRepo.DeleteOne(ctx, book)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrReadBookNotFound
	}
	return nil
}
