package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dvvinfo/btlz-wb-test/internal/core/domain"
)

// TariffRepo implements storage.TariffRepository using PostgreSQL.
type TariffRepo struct {
	db *DB
}

// NewTariffRepo creates a new PostgreSQL tariff repository.
func NewTariffRepo(db *DB) *TariffRepo {
	return &TariffRepo{db: db}
}

const upsertQuery = `
	INSERT INTO tariffs (date, warehouse_name, box_type, delivery_type, coefficient, raw_data)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (date, warehouse_name, box_type, delivery_type) DO UPDATE SET
		coefficient = EXCLUDED.coefficient,
		raw_data = EXCLUDED.raw_data,
		updated_at = NOW()
`

// UpsertDaily writes the whole batch in a single transaction. Key collisions
// replace the coefficient and raw payload in the database, so concurrent
// cycles converge to one row per key without application-level locking.
func (r *TariffRepo) UpsertDaily(ctx context.Context, tariffs []domain.Tariff) (int, error) {
	if len(tariffs) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tariffs {
		raw, err := json.Marshal(t.Raw)
		if err != nil {
			return 0, fmt.Errorf("failed to encode raw tariff data: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			domain.Day(t.Date),
			t.WarehouseName,
			t.BoxType,
			string(t.DeliveryType),
			t.Coefficient,
			raw,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert tariff %s/%s: %w", t.WarehouseName, t.BoxType, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit tariff batch: %w", err)
	}
	return len(tariffs), nil
}

const selectByDateQuery = `
	SELECT date, warehouse_name, box_type, delivery_type, coefficient, raw_data, created_at, updated_at
	FROM tariffs
	WHERE date = $1
	ORDER BY coefficient ASC, warehouse_name, box_type, delivery_type
`

// GetLatestDaily retrieves the snapshot for the most recent stored date,
// ascending by coefficient.
func (r *TariffRepo) GetLatestDaily(ctx context.Context) ([]domain.Tariff, error) {
	var latest sql.NullTime
	if err := r.db.GetContext(ctx, &latest, `SELECT MAX(date) FROM tariffs`); err != nil {
		return nil, fmt.Errorf("failed to get latest tariff date: %w", err)
	}
	if !latest.Valid {
		return []domain.Tariff{}, nil
	}
	return r.GetByDate(ctx, latest.Time)
}

// GetByDate retrieves all tariffs for one calendar day.
func (r *TariffRepo) GetByDate(ctx context.Context, date time.Time) ([]domain.Tariff, error) {
	var rows []tariffRow
	if err := r.db.SelectContext(ctx, &rows, selectByDateQuery, domain.Day(date)); err != nil {
		return nil, fmt.Errorf("failed to select tariffs: %w", err)
	}

	tariffs := make([]domain.Tariff, 0, len(rows))
	for i := range rows {
		t, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		tariffs = append(tariffs, t)
	}
	return tariffs, nil
}

type tariffRow struct {
	Date          time.Time `db:"date"`
	WarehouseName string    `db:"warehouse_name"`
	BoxType       string    `db:"box_type"`
	DeliveryType  string    `db:"delivery_type"`
	Coefficient   float64   `db:"coefficient"`
	RawData       []byte    `db:"raw_data"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (row *tariffRow) toDomain() (domain.Tariff, error) {
	var raw domain.RawBoxTariff
	if len(row.RawData) > 0 {
		if err := json.Unmarshal(row.RawData, &raw); err != nil {
			return domain.Tariff{}, fmt.Errorf("failed to decode raw tariff data: %w", err)
		}
	}
	return domain.Tariff{
		Date:          row.Date,
		WarehouseName: row.WarehouseName,
		BoxType:       row.BoxType,
		DeliveryType:  domain.DeliveryType(row.DeliveryType),
		Coefficient:   row.Coefficient,
		Raw:           raw,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}
