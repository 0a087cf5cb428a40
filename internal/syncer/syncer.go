package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/dvvinfo/btlz-wb-test/internal/core/domain"
	"github.com/dvvinfo/btlz-wb-test/internal/infra/storage"
)

// Sink is one external spreadsheet destination.
type Sink interface {
	ID() string

	// WriteTable replaces the sink's whole designated region with the given
	// table, so stale rows never survive a shrink in row count.
	WriteTable(ctx context.Context, table [][]string) error
}

// tableHeader is the fixed first row of every mirrored table.
var tableHeader = []string{"Warehouse", "Box Type", "Delivery Type", "Coefficient", "Date"}

const defaultWriteTimeout = 30 * time.Second

// Syncer mirrors the latest daily snapshot into every configured sink.
type Syncer struct {
	store        storage.TariffRepository
	sinks        []Sink
	writeTimeout time.Duration
	log          *slog.Logger
}

// New creates a Syncer. writeTimeout bounds each sink write; zero uses the
// default.
func New(store storage.TariffRepository, sinks []Sink, writeTimeout time.Duration, log *slog.Logger) *Syncer {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &Syncer{
		store:        store,
		sinks:        sinks,
		writeTimeout: writeTimeout,
		log:          log,
	}
}

// SyncAll pushes the latest snapshot to every sink. Sinks run concurrently
// and fail independently: the result slice always has one entry per sink and
// no sink's failure prevents the others from being attempted. An empty
// snapshot is a success with zero rows written.
func (s *Syncer) SyncAll(ctx context.Context) []domain.SyncResult {
	results := make([]domain.SyncResult, len(s.sinks))

	tariffs, err := s.store.GetLatestDaily(ctx)
	if err != nil {
		for i, sink := range s.sinks {
			results[i] = domain.SyncResult{
				Target: sink.ID(),
				Error:  fmt.Sprintf("failed to read snapshot: %v", err),
			}
		}
		return results
	}

	if len(tariffs) == 0 {
		s.log.Info("no tariffs to sync")
		for i, sink := range s.sinks {
			results[i] = domain.SyncResult{Target: sink.ID(), Success: true}
		}
		return results
	}

	table := BuildTable(tariffs)

	var wg sync.WaitGroup
	for i, sink := range s.sinks {
		wg.Add(1)
		go func(i int, sink Sink) {
			defer wg.Done()
			results[i] = s.syncOne(ctx, sink, table)
		}(i, sink)
	}
	wg.Wait()

	return results
}

func (s *Syncer) syncOne(ctx context.Context, sink Sink, table [][]string) domain.SyncResult {
	writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	if err := sink.WriteTable(writeCtx, table); err != nil {
		s.log.Error("sink write failed", "target", sink.ID(), "error", err)
		return domain.SyncResult{Target: sink.ID(), Error: err.Error()}
	}

	rows := len(table) - 1 // header excluded
	return domain.SyncResult{Target: sink.ID(), Success: true, RowsWritten: rows}
}

// BuildTable renders tariffs as a rectangular sheet table with a header row.
// Coefficients keep exactly two decimal places, dates are YYYY-MM-DD, and the
// store's ascending coefficient order is preserved.
func BuildTable(tariffs []domain.Tariff) [][]string {
	table := make([][]string, 0, len(tariffs)+1)
	table = append(table, append([]string(nil), tableHeader...))
	for _, t := range tariffs {
		table = append(table, []string{
			t.WarehouseName,
			t.BoxType,
			string(t.DeliveryType),
			strconv.FormatFloat(t.Coefficient, 'f', 2, 64),
			t.Date.Format(domain.DateFormat),
		})
	}
	return table
}
