package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/daynote/internal/models"
	"github.com/julianstephens/daynote/internal/storage"
)

const selectDays = "SELECT id, day, month, year, tasks FROM days"

func (s *Store) GetAll(ctx context.Context) ([]models.Day, error) {
	if s.db == nil {
		return nil, storage.ErrNotLoaded
	}

	rows, err := s.db.QueryContext(ctx, selectDays+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrStorageRead, err)
	}
	defer rows.Close()

	days := []models.Day{}
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrStorageRead, err)
	}
	return days, nil
}

func (s *Store) FindByDate(ctx context.Context, date models.Date) (models.Day, bool, error) {
	if s.db == nil {
		return models.Day{}, false, storage.ErrNotLoaded
	}

	row := s.db.QueryRowContext(ctx, selectDays+" WHERE day = ? AND month = ? AND year = ?",
		date.Day, date.Month, date.Year)
	day, err := scanDay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Day{}, false, nil
	}
	if err != nil {
		return models.Day{}, false, err
	}
	return day, true, nil
}

func (s *Store) Upsert(ctx context.Context, day *models.Day) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}
	if err := storage.CheckWrite(*day); err != nil {
		return err
	}

	tasks, err := storage.EncodeTasks(day.Tasks)
	if err != nil {
		return fmt.Errorf("%w: encode tasks: %w", storage.ErrStorageWrite, err)
	}

	if !day.ID.Valid {
		res, err := s.db.ExecContext(ctx,
			"INSERT INTO days (day, month, year, tasks) VALUES (?, ?, ?, ?)",
			day.Day, day.Month, day.Year, string(tasks))
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", storage.ErrUniqueConstraint, day.Date)
			}
			return fmt.Errorf("%w: %w", storage.ErrStorageWrite, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("%w: %w", storage.ErrStorageWrite, err)
		}
		day.ID = models.NewDayID(id)
		return nil
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE days SET day = ?, month = ?, year = ?, tasks = ? WHERE id = ?",
		day.Day, day.Month, day.Year, string(tasks), day.ID.Value)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", storage.ErrUniqueConstraint, day.Date)
		}
		return fmt.Errorf("%w: %w", storage.ErrStorageWrite, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrStorageWrite, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: day %s: %w", storage.ErrStorageWrite, day.ID, storage.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDay(row scanner) (models.Day, error) {
	var (
		id               int64
		day, month, year int
		tasks            string
	)
	if err := row.Scan(&id, &day, &month, &year, &tasks); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Day{}, err
		}
		return models.Day{}, fmt.Errorf("%w: %w", storage.ErrStorageRead, err)
	}
	d, err := storage.DecodeDay(id, day, month, year, []byte(tasks))
	if err != nil {
		return models.Day{}, fmt.Errorf("%w: %w", storage.ErrStorageRead, err)
	}
	return d, nil
}
