package storage

import (
	"context"
	"time"

	"github.com/dvvinfo/btlz-wb-test/internal/core/domain"
)

// TariffRepository handles daily tariff persistence.
type TariffRepository interface {
	// UpsertDaily writes the whole batch atomically. Rows sharing the
	// (date, warehouse, box type, delivery type) key are replaced, never
	// duplicated. Returns the number of tariffs submitted.
	UpsertDaily(ctx context.Context, tariffs []domain.Tariff) (int, error)

	// GetLatestDaily returns every row of the most recent stored date,
	// ascending by coefficient. Empty store yields an empty result, not
	// an error.
	GetLatestDaily(ctx context.Context) ([]domain.Tariff, error)

	// GetByDate returns the rows for one calendar day, ascending by
	// coefficient.
	GetByDate(ctx context.Context, date time.Time) ([]domain.Tariff, error)
}
