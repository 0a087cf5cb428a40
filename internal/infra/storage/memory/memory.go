package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dvvinfo/btlz-wb-test/internal/core/domain"
)

// TariffRepo is an in-memory storage.TariffRepository for tests and
// database-less runs. It mirrors the upsert semantics of the Postgres
// schema: one row per (date, warehouse, box type, delivery type).
type TariffRepo struct {
	rows map[string]domain.Tariff
	mu   sync.RWMutex
}

// NewTariffRepo creates an empty in-memory tariff repository.
func NewTariffRepo() *TariffRepo {
	return &TariffRepo{rows: make(map[string]domain.Tariff)}
}

func key(t domain.Tariff) string {
	return strings.Join([]string{
		domain.Day(t.Date).Format(domain.DateFormat),
		t.WarehouseName,
		t.BoxType,
		string(t.DeliveryType),
	}, "|")
}

// UpsertDaily replaces coefficient and raw payload on key collision.
func (r *TariffRepo) UpsertDaily(ctx context.Context, tariffs []domain.Tariff) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, t := range tariffs {
		k := key(t)
		if existing, ok := r.rows[k]; ok {
			existing.Coefficient = t.Coefficient
			existing.Raw = t.Raw
			existing.UpdatedAt = now
			r.rows[k] = existing
			continue
		}
		t.Date = domain.Day(t.Date)
		t.CreatedAt = now
		t.UpdatedAt = now
		r.rows[k] = t
	}
	return len(tariffs), nil
}

// GetLatestDaily returns the rows of the maximum stored date.
func (r *TariffRepo) GetLatestDaily(ctx context.Context) ([]domain.Tariff, error) {
	r.mu.RLock()
	var latest time.Time
	for _, t := range r.rows {
		if t.Date.After(latest) {
			latest = t.Date
		}
	}
	r.mu.RUnlock()

	if latest.IsZero() {
		return []domain.Tariff{}, nil
	}
	return r.GetByDate(ctx, latest)
}

// GetByDate returns one day's rows ascending by coefficient, ties broken by
// the business key for determinism.
func (r *TariffRepo) GetByDate(ctx context.Context, date time.Time) ([]domain.Tariff, error) {
	day := domain.Day(date).Format(domain.DateFormat)

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Tariff, 0)
	for _, t := range r.rows {
		if t.Date.Format(domain.DateFormat) == day {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Coefficient != out[j].Coefficient {
			return out[i].Coefficient < out[j].Coefficient
		}
		return key(out[i]) < key(out[j])
	})
	return out, nil
}
