package normalize

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/dvvinfo/btlz-wb-test/internal/core/domain"
)

// exprMarkers are multiplier labels stripped from boxDeliveryAndStorageExpr
// before parsing. The Cyrillic "х" shows up in real payloads alongside the
// Latin "x".
var exprMarkers = []string{"коэффициент", "коэф.", "x", "х"}

// Normalizer converts raw warehouse entries into canonical daily tariffs.
// It is pure relative to the injected clock: the same input and the same
// "today" always produce the same output.
type Normalizer struct {
	clock clockwork.Clock
	log   *slog.Logger
}

// New creates a Normalizer using the given time source.
func New(clock clockwork.Clock, log *slog.Logger) *Normalizer {
	return &Normalizer{clock: clock, log: log}
}

// Normalize maps raw entries to tariffs dated to the current calendar day.
// Entries yielding no usable positive coefficient are dropped with a warning;
// a bad entry never aborts the rest of the batch.
func (n *Normalizer) Normalize(raws []domain.RawBoxTariff) []domain.Tariff {
	today := domain.Day(n.clock.Now())
	out := make([]domain.Tariff, 0, len(raws))

	for _, raw := range raws {
		coeff, ok := n.coefficient(raw)
		if !ok {
			n.log.Warn("tariff entry skipped, no usable coefficient",
				"warehouse", raw.WarehouseName,
				"box_type", raw.BoxTypeName,
			)
			continue
		}

		boxType := strings.TrimSpace(raw.BoxTypeName)
		if boxType == "" {
			boxType = domain.DefaultBoxType
		}

		out = append(out, domain.Tariff{
			Date:          today,
			WarehouseName: raw.WarehouseName,
			BoxType:       boxType,
			DeliveryType:  classify(raw),
			Coefficient:   coeff,
			Raw:           raw,
		})
	}
	return out
}

// coefficient walks the field precedence and returns the first usable
// positive value: expression, delivery base, delivery liter, storage base,
// storage liter. A present but unparseable expression defaults to 1.0
// rather than skipping the field chain.
func (n *Normalizer) coefficient(raw domain.RawBoxTariff) (float64, bool) {
	if expr := strings.TrimSpace(raw.BoxDeliveryAndStorageExpr); expr != "" {
		v, err := parseExpr(expr)
		if err != nil {
			n.log.Warn("unparseable tariff expression, defaulting coefficient to 1.0",
				"warehouse", raw.WarehouseName,
				"expr", expr,
			)
			return 1.0, true
		}
		if v > 0 {
			return v, true
		}
	}

	for _, field := range []string{
		raw.BoxDeliveryBase,
		raw.BoxDeliveryLiter,
		raw.BoxStorageBase,
		raw.BoxStorageLiter,
	} {
		if v, err := parseDecimal(field); err == nil && v > 0 {
			return v, true
		}
	}
	return 0, false
}

// parseExpr strips multiplier markers ("x1.5", "коэф. 2") and parses the rest.
func parseExpr(s string) (float64, error) {
	s = strings.ToLower(s)
	for _, marker := range exprMarkers {
		s = strings.ReplaceAll(s, marker, "")
	}
	return parseDecimal(s)
}

// parseDecimal parses a source number, tolerating a comma decimal separator.
func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}

// classify picks the delivery type; the first populated pricing field wins.
func classify(raw domain.RawBoxTariff) domain.DeliveryType {
	switch {
	case populated(raw.BoxDeliveryBase):
		return domain.DeliveryStandard
	case populated(raw.BoxDeliveryLiter):
		return domain.DeliveryLiterBased
	case populated(raw.BoxStorageBase):
		return domain.DeliveryStorage
	case strings.TrimSpace(raw.BoxDeliveryAndStorageExpr) != "":
		return domain.DeliveryExpr
	default:
		return domain.DeliveryUnknown
	}
}

// populated treats "" and "0" as absent.
func populated(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && s != "0"
}
