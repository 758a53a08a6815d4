package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/medreminder/internal/client/models"
	"github.com/dmitrijs2005/medreminder/internal/client/repositories/medicines"
	"github.com/dmitrijs2005/medreminder/internal/dbx"
)

// MedicineService manages the medicines of a user in the local database.
type MedicineService interface {
	Add(ctx context.Context, m *models.Medicine) (int64, error)
	Update(ctx context.Context, m *models.Medicine) error
	Get(ctx context.Context, id int64) (*models.Medicine, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Medicine, error)
	Delete(ctx context.Context, id int64) error
	// Due returns the doses of userID scheduled in [from, from+window).
	Due(ctx context.Context, userID string, from time.Time, window time.Duration) ([]models.Reminder, error)
}

type medicineService struct {
	db *sql.DB
}

func NewMedicineService(db *sql.DB) MedicineService {
	return &medicineService{db: db}
}

func (s *medicineService) repo(db dbx.DBTX) medicines.Repository {
	return medicines.NewSQLiteRepository(db)
}

func (s *medicineService) Add(ctx context.Context, m *models.Medicine) (int64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		var err error
		if id, err = repo.Insert(ctx, m); err != nil {
			return err
		}
		return repo.SetTimes(ctx, id, m.Times)
	})
	if err != nil {
		return 0, fmt.Errorf("add medicine: %w", err)
	}
	m.ID = id
	return id, nil
}

func (s *medicineService) Update(ctx context.Context, m *models.Medicine) error {
	if err := m.Validate(); err != nil {
		return err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Update(ctx, m); err != nil {
			return err
		}
		return repo.SetTimes(ctx, m.ID, m.Times)
	})
	if err != nil {
		return fmt.Errorf("update medicine %d: %w", m.ID, err)
	}
	return nil
}

func (s *medicineService) Get(ctx context.Context, id int64) (*models.Medicine, error) {
	return s.repo(s.db).GetByID(ctx, id)
}

func (s *medicineService) ListForUser(ctx context.Context, userID string) ([]*models.Medicine, error) {
	return s.repo(s.db).ListByUser(ctx, userID)
}

func (s *medicineService) Delete(ctx context.Context, id int64) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repo(tx).Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete medicine %d: %w", id, err)
	}
	return nil
}

func (s *medicineService) Due(ctx context.Context, userID string, from time.Time, window time.Duration) ([]models.Reminder, error) {
	if window <= 0 {
		return nil, nil
	}
	return s.repo(s.db).ListDue(ctx, userID, from, from.Add(window))
}
