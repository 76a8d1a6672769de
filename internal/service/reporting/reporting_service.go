package reporting

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/teagang/dealership/internal/domain/models"
)

// Source exposes a consistent copy of the current inventory.
type Source interface {
	Snapshot(ctx context.Context) (models.Dealership, []models.Vehicle)
}

// TypeSummary aggregates the vehicles sharing one type, compared case-insensitively.
type TypeSummary struct {
	Type  string          `json:"type"`
	Count int             `json:"count"`
	Value decimal.Decimal `json:"value"`
}

// InventorySummary is the headline view of the lot.
type InventorySummary struct {
	Dealership   models.Dealership `json:"dealership"`
	Vehicles     int               `json:"vehicles"`
	TotalValue   decimal.Decimal   `json:"total_value"`
	AveragePrice decimal.Decimal   `json:"average_price"`
	ByType       []TypeSummary     `json:"by_type"`
}

// Service exposes lightweight analytics over the inventory.
type Service struct {
	source Source
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(source Source, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, logger: logger}
}

// Summary aggregates the current inventory.
func (s *Service) Summary(ctx context.Context) InventorySummary {
	dealership, vehicles := s.source.Snapshot(ctx)
	summary := Summarize(dealership, vehicles)
	s.logger.Debug("inventory summary computed", zap.Int("vehicles", summary.Vehicles), zap.String("value", summary.TotalValue.StringFixed(2)))
	return summary
}

// Summarize counts and values vehicles overall and per type. Types are sorted by name.
func Summarize(dealership models.Dealership, vehicles []models.Vehicle) InventorySummary {
	summary := InventorySummary{
		Dealership:   dealership,
		Vehicles:     len(vehicles),
		TotalValue:   decimal.Zero,
		AveragePrice: decimal.Zero,
		ByType:       []TypeSummary{},
	}

	groups := make(map[string]*TypeSummary)
	for _, v := range vehicles {
		summary.TotalValue = summary.TotalValue.Add(v.Price)

		key := strings.ToLower(strings.TrimSpace(v.Type))
		group, ok := groups[key]
		if !ok {
			group = &TypeSummary{Type: strings.TrimSpace(v.Type), Value: decimal.Zero}
			groups[key] = group
		}
		group.Count++
		group.Value = group.Value.Add(v.Price)
	}

	if len(vehicles) > 0 {
		summary.AveragePrice = summary.TotalValue.Div(decimal.NewFromInt(int64(len(vehicles)))).Round(2)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		summary.ByType = append(summary.ByType, *groups[key])
	}
	return summary
}

// FormatSummary renders a summary as a short multi-line message.
func FormatSummary(s InventorySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s inventory: %d vehicles worth $%s", s.Dealership.Name, s.Vehicles, s.TotalValue.StringFixed(2))
	if s.Vehicles == 0 {
		return b.String()
	}
	fmt.Fprintf(&b, " (avg $%s)", s.AveragePrice.StringFixed(2))
	for _, t := range s.ByType {
		fmt.Fprintf(&b, "\n- %s: %d ($%s)", t.Type, t.Count, t.Value.StringFixed(2))
	}
	return b.String()
}

// FormatLoadReport renders the load counters the way operators read them after startup.
func FormatLoadReport(stats models.LoadStats) string {
	var b strings.Builder
	b.WriteString("Dealership Data Summary\n")
	b.WriteString("--------------------------\n")
	fmt.Fprintf(&b, "Vehicles loaded:    %d\n", stats.Loaded)
	fmt.Fprintf(&b, "Skipped bad lines:  %d\n", stats.Skipped)
	fmt.Fprintf(&b, "Duplicates ignored: %d\n", stats.Duplicate)
	b.WriteString("--------------------------\n")
	fmt.Fprintf(&b, "Total records processed: %d\n", stats.Processed())
	return b.String()
}
