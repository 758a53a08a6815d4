package medicines

import (
	"context"
	"time"

	"github.com/dmitrijs2005/medreminder/internal/client/models"
)

type Repository interface {
	// Insert stores m without its times and returns the assigned id.
	Insert(ctx context.Context, m *models.Medicine) (int64, error)
	// Update overwrites the scalar fields of an existing medicine.
	Update(ctx context.Context, m *models.Medicine) error
	// SetTimes replaces the dose times of medicine id, keeping their order.
	SetTimes(ctx context.Context, id int64, times []time.Time) error
	GetByID(ctx context.Context, id int64) (*models.Medicine, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Medicine, error)
	Delete(ctx context.Context, id int64) error
	// ListDue returns the doses of userID scheduled in [from, to), earliest first.
	ListDue(ctx context.Context, userID string, from, to time.Time) ([]models.Reminder, error)
}
