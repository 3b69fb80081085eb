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

const (
	channelReportCacheKeyPrefix = "report:channels"
	channelReportCacheTTL       = 6 * time.Hour

	defaultReportLimit = 200
)

// ChannelReportService builds the comprehensive per-channel lifecycle
// report: every raw order line folded into per-customer channel histories,
// then classified and scanned for switches.
type ChannelReportService struct {
	orders   directory.OrderItemRepository
	cache    ReportCache
	cacheTTL time.Duration

	rules  resolution.ClassifierRules
	logger *zap.Logger
}

// NewChannelReportService creates a new ChannelReportService. cache may be
// nil.
func NewChannelReportService(
	orders directory.OrderItemRepository,
	cache ReportCache,
	rules resolution.ClassifierRules,
	logger *zap.Logger,
) *ChannelReportService {
	return &ChannelReportService{
		orders:   orders,
		cache:    cache,
		cacheTTL: channelReportCacheTTL,
		rules:    rules,
		logger:   logger,
	}
}

// SetCacheTTL overrides how long cached channel reports stay valid.
func (s *ChannelReportService) SetCacheTTL(ttl time.Duration) {
	if ttl > 0 {
		s.cacheTTL = ttl
	}
}

// Run builds one channel report.
func (s *ChannelReportService) Run(ctx context.Context, req ChannelReportRequest) (*ChannelReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "resolution", "channel_report_run")
	defer span.End()

	started := time.Now()
	if req.Limit <= 0 {
		req.Limit = defaultReportLimit
	}

	cacheKey := fmt.Sprintf("%s:%d", channelReportCacheKeyPrefix, req.Limit)
	if s.cache != nil && !req.Rebuild {
		var cached ChannelReport
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			s.logger.Warn("channel report cache read failed", zap.Error(err))
		} else if hit {
			cached.FromCache = true
			return &cached, nil
		}
	}

	lines, err := s.orders.LoadAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load order items: %w", err)
	}
	s.logger.Info("channel report lines loaded", zap.Int("lines", len(lines)))

	agg := resolution.NewAggregator(s.rules, resolution.RevenueExclusions)
	folded := agg.Fold(toOrderLines(lines))

	report := &ChannelReport{
		RunID:           uuid.New().String(),
		LinesScanned:    folded.LinesScanned,
		LinesSkipped:    folded.LinesSkipped,
		UnknownOrders:   folded.UnknownOrders,
		Customers:       len(folded.Profiles),
		Totals:          make(map[string]ChannelTotals),
		Classifications: make(map[string]int),
		SwitchCounts:    make(map[string]int),
	}

	for _, profile := range folded.ProfilesInOrder() {
		for ch, hist := range profile.Histories {
			if !hist.HasOrders() {
				continue
			}
			totals := report.Totals[string(ch)]
			totals.Customers++
			totals.Orders += hist.Orders
			totals.Revenue = totals.Revenue.Add(hist.Revenue)
			report.Totals[string(ch)] = totals
		}

		report.Classifications[string(resolution.ClassifyProfile(profile))]++
		if profile.Business {
			report.BusinessCount++
		}

		for _, sw := range resolution.DetectSwitches(profile) {
			entry := switchEntry(profile, sw)
			report.SwitchCounts[string(sw.From)+"_to_"+string(sw.To)]++
			if sw.To == resolution.ChannelMarketplace {
				report.ToMarketplace = append(report.ToMarketplace, entry)
			} else {
				report.OtherSwitches = append(report.OtherSwitches, entry)
			}
		}

		if target, ok := retailBusinessTarget(profile); ok {
			report.RetailBusinessTargets = append(report.RetailBusinessTargets, target)
		}
	}

	sortByTargetRevenue(report.ToMarketplace)
	sortByTargetRevenue(report.OtherSwitches)
	sort.SliceStable(report.RetailBusinessTargets, func(i, j int) bool {
		return report.RetailBusinessTargets[i].RetailSpend.GreaterThan(report.RetailBusinessTargets[j].RetailSpend)
	})
	if len(report.ToMarketplace) > req.Limit {
		report.ToMarketplace = report.ToMarketplace[:req.Limit]
	}
	if len(report.OtherSwitches) > req.Limit {
		report.OtherSwitches = report.OtherSwitches[:req.Limit]
	}
	if len(report.RetailBusinessTargets) > req.Limit {
		report.RetailBusinessTargets = report.RetailBusinessTargets[:req.Limit]
	}

	report.DurationMillis = time.Since(started).Milliseconds()

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, report, s.cacheTTL); err != nil {
			s.logger.Warn("channel report cache write failed", zap.Error(err))
		}
	}

	s.logger.Info("channel report complete",
		zap.Int("customers", report.Customers),
		zap.Int("to_marketplace", len(report.ToMarketplace)),
		zap.Int("unknown_orders", report.UnknownOrders))
	return report, nil
}

func toOrderLines(items []directory.OrderLineItem) []resolution.OrderLine {
	lines := make([]resolution.OrderLine, len(items))
	for i := range items {
		item := &items[i]
		lines[i] = resolution.OrderLine{
			OrderNumber:    item.OrderNumber,
			BillingName:    item.BillingName,
			BillingAddress: item.BillingAddress,
			BillingCity:    item.BillingCity,
			BillingState:   item.BillingState,
			BillingZip:     item.BillingZip,
			PostingDate:    item.PostingDate,
			ProductName:    item.ProductName,
			SKU:            item.SKU,
			Revenue:        item.Revenue,
		}
	}
	return lines
}

func switchEntry(profile *resolution.CustomerProfile, sw resolution.ChannelSwitch) ChannelSwitchEntry {
	source := profile.History(sw.From)
	target := profile.History(sw.To)
	return ChannelSwitchEntry{
		Customer:      profile.DisplayName,
		City:          profile.BillingCity,
		State:         profile.BillingState,
		Business:      profile.Business,
		From:          string(sw.From),
		To:            string(sw.To),
		SwitchDate:    sw.SwitchDate,
		GapDays:       sw.GapDays,
		SourceOrders:  source.Orders,
		SourceRevenue: source.Revenue,
		TargetOrders:  target.Orders,
		TargetRevenue: target.Revenue,
	}
}

// retailBusinessTarget reports whether a profile is a wholesale upsell
// prospect: business-named, retail activity, no marketplace orders yet.
func retailBusinessTarget(profile *resolution.CustomerProfile) (RetailBusinessTarget, bool) {
	retail := profile.History(resolution.ChannelRetail)
	if !profile.Business || !retail.HasOrders() ||
		profile.History(resolution.ChannelMarketplace).HasOrders() {
		return RetailBusinessTarget{}, false
	}
	return RetailBusinessTarget{
		BusinessName: profile.DisplayName,
		City:         profile.BillingCity,
		State:        profile.BillingState,
		RetailOrders: retail.Orders,
		RetailSpend:  retail.Revenue,
		FirstOrder:   retail.First,
		LastOrder:    retail.Last,
	}, true
}

func sortByTargetRevenue(entries []ChannelSwitchEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TargetRevenue.GreaterThan(entries[j].TargetRevenue)
	})
}
