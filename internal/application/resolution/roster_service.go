package resolution

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/salesops/backend/internal/domain/directory"
	"github.com/salesops/backend/internal/domain/resolution"
	"github.com/salesops/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const rosterPreviewSize = 25

// RosterService extracts the marketplace customer roster from raw order
// lines: group marketplace-channel activity by billing identity, compute
// lifetime stats and upsert the resulting rows.
type RosterService struct {
	orders directory.OrderItemRepository
	writer directory.MarketplaceRosterWriter

	rules  resolution.ClassifierRules
	logger *zap.Logger
}

// NewRosterService creates a new RosterService.
func NewRosterService(
	orders directory.OrderItemRepository,
	writer directory.MarketplaceRosterWriter,
	rules resolution.ClassifierRules,
	logger *zap.Logger,
) *RosterService {
	return &RosterService{
		orders: orders,
		writer: writer,
		rules:  rules,
		logger: logger,
	}
}

// Run executes one extraction. Dry runs compute everything and write
// nothing.
func (s *RosterService) Run(ctx context.Context, req RosterRequest) (*RosterReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "resolution", "roster_run")
	defer span.End()

	started := time.Now()

	lines, err := s.orders.LoadAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load order items: %w", err)
	}

	agg := resolution.NewAggregator(s.rules, resolution.RevenueExclusions)
	folded := agg.Fold(toOrderLines(lines))

	customers := make([]directory.MarketplaceCustomer, 0, len(folded.Profiles))
	for _, profile := range folded.ProfilesInOrder() {
		hist := profile.History(resolution.ChannelMarketplace)
		if !hist.HasOrders() {
			continue
		}
		customers = append(customers, directory.MarketplaceCustomer{
			ID:             profile.Key,
			BusinessName:   profile.DisplayName,
			BillingAddress: profile.BillingAddress,
			BillingCity:    profile.BillingCity,
			BillingState:   profile.BillingState,
			BillingZip:     profile.BillingZip,
			TotalOrders:    hist.Orders,
			LifetimeValue:  hist.Revenue,
			FirstOrderDate: hist.First,
			LastOrderDate:  hist.Last,
			Source:         "order-export",
		})
	}

	report := &RosterReport{
		RunID:        uuid.New().String(),
		DryRun:       req.DryRun,
		LinesScanned: folded.LinesScanned,
		LinesSkipped: folded.LinesSkipped,
		Extracted:    len(customers),
	}

	s.logger.Info("roster extraction computed",
		zap.Int("lines", folded.LinesScanned),
		zap.Int("extracted", len(customers)),
		zap.Bool("dry_run", req.DryRun))

	if req.DryRun {
		report.Preview = buildPreview(customers)
	} else if len(customers) > 0 {
		upserted, err := s.writer.UpsertRoster(ctx, customers)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("upsert roster: %w", err)
		}
		report.Upserted = upserted
	}

	report.DurationMillis = time.Since(started).Milliseconds()
	return report, nil
}

// buildPreview returns the highest-value extracted rows for a dry run.
func buildPreview(customers []directory.MarketplaceCustomer) []RosterPreview {
	ranked := append([]directory.MarketplaceCustomer(nil), customers...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].LifetimeValue.GreaterThan(ranked[j].LifetimeValue)
	})
	if len(ranked) > rosterPreviewSize {
		ranked = ranked[:rosterPreviewSize]
	}

	preview := make([]RosterPreview, 0, len(ranked))
	for _, c := range ranked {
		preview = append(preview, RosterPreview{
			BusinessName:   c.BusinessName,
			City:           c.BillingCity,
			State:          c.BillingState,
			TotalOrders:    c.TotalOrders,
			LifetimeValue:  c.LifetimeValue,
			FirstOrderDate: c.FirstOrderDate,
			LastOrderDate:  c.LastOrderDate,
		})
	}
	return preview
}
