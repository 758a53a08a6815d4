package medicines

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/medreminder/internal/client/models"
	"github.com/dmitrijs2005/medreminder/internal/common"
	"github.com/dmitrijs2005/medreminder/internal/dbx"
)

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, m *models.Medicine) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO medicines (name, compartment, number, user_id) VALUES (?, ?, ?, ?)`,
		m.Name, m.Compartment, m.Number, m.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert medicine: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get medicine id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, m *models.Medicine) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE medicines SET name = ?, compartment = ?, number = ?, user_id = ? WHERE id = ?`,
		m.Name, m.Compartment, m.Number, m.UserID, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update medicine: %w", err)
	}
	return expectOneRow(res)
}

func (r *SQLiteRepository) SetTimes(ctx context.Context, id int64, times []time.Time) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM medicine_times WHERE medicine_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear medicine times: %w", err)
	}
	for pos, at := range times {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO medicine_times (medicine_id, position, at) VALUES (?, ?, ?)`,
			id, pos, at.UTC().UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to insert medicine time: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Medicine, error) {
	list, err := r.query(ctx, `m.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, common.ErrorNotFound
	}
	return list[0], nil
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string) ([]*models.Medicine, error) {
	return r.query(ctx, `m.user_id = ?`, userID)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM medicine_times WHERE medicine_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete medicine times: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM medicines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete medicine: %w", err)
	}
	return expectOneRow(res)
}

func (r *SQLiteRepository) ListDue(ctx context.Context, userID string, from, to time.Time) ([]models.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.name, m.compartment, m.number, t.at
		FROM medicine_times t
		JOIN medicines m ON m.id = t.medicine_id
		WHERE m.user_id = ? AND t.at >= ? AND t.at < ?
		ORDER BY t.at, m.id
	`, userID, from.UTC().UnixMilli(), to.UTC().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to select due medicines: %w", err)
	}
	defer rows.Close()

	var due []models.Reminder
	for rows.Next() {
		var (
			rem models.Reminder
			at  int64
		)
		if err := rows.Scan(&rem.MedicineID, &rem.Name, &rem.Compartment, &rem.Number, &at); err != nil {
			return nil, fmt.Errorf("failed to scan due medicine: %w", err)
		}
		rem.At = time.UnixMilli(at).UTC()
		due = append(due, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate due medicines: %w", err)
	}
	return due, nil
}

// query loads medicines matching where together with their ordered times.
func (r *SQLiteRepository) query(ctx context.Context, where string, args ...any) ([]*models.Medicine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.name, m.compartment, m.number, m.user_id, t.at
		FROM medicines m
		LEFT JOIN medicine_times t ON t.medicine_id = m.id
		WHERE `+where+`
		ORDER BY m.id, t.position
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select medicines: %w", err)
	}
	defer rows.Close()

	var (
		result []*models.Medicine
		cur    *models.Medicine
	)
	for rows.Next() {
		var (
			m  models.Medicine
			at sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.Compartment, &m.Number, &m.UserID, &at); err != nil {
			return nil, fmt.Errorf("failed to scan medicine: %w", err)
		}
		if cur == nil || cur.ID != m.ID {
			cur = &m
			result = append(result, cur)
		}
		if at.Valid {
			cur.Times = append(cur.Times, time.UnixMilli(at.Int64).UTC())
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate medicines: %w", err)
	}
	return result, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	if n != 1 {
		return fmt.Errorf("wrong rows affected count: %d", n)
	}
	return nil
}
