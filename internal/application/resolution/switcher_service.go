package resolution

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salesops/backend/internal/domain/directory"
	"github.com/salesops/backend/internal/domain/resolution"
	"github.com/salesops/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	switcherCacheKeyPrefix = "report:switchers"
	switcherCacheTTL       = 6 * time.Hour

	// ModeStrict requires the full normalized address|city|state|zip key to
	// match. ModeLoose falls back to city|state|zip when no address-level
	// candidate exists. Names only break ties, never gate a match.
	ModeStrict = "strict"
	ModeLoose  = "loose"

	defaultSwitcherLimit = 500
)

// directStats is a direct customer's pre-aggregated order history with
// marketplace-pattern orders screened out.
type directStats struct {
	orders  int
	revenue decimal.Decimal
	first   *time.Time
	last    *time.Time
	lastRep string
	seen    map[string]bool
}

// directCandidate pairs an ERP customer with its direct-order stats.
type directCandidate struct {
	customer *directory.ErpCustomer
	stats    *directStats

	normName    string
	normAddress string
	zip         string
}

// locationKeys returns the strict (address|city|state|zip) and loose
// (city|state|zip) composite lookup keys for one set of billing fields.
func locationKeys(address, city, state, zip string) (string, string) {
	loose := resolution.NormalizeCity(city) + "|" +
		resolution.NormalizeState(state) + "|" +
		resolution.NormalizeZip(zip)
	return resolution.NormalizeAddress(address) + "|" + loose, loose
}

// SwitcherService runs the roster-vs-direct switcher analysis: match each
// marketplace roster customer back to a direct customer, then decide whether
// the direct relationship ended before the marketplace one began.
type SwitcherService struct {
	roster    directory.MarketplaceCustomerRepository
	customers directory.ErpCustomerRepository
	orders    directory.OrderItemRepository
	writer    directory.MarketplaceAnnotationWriter
	cache     ReportCache
	cacheTTL  time.Duration

	policy resolution.MatchPolicy
	filter resolution.DirectOrderFilter
	logger *zap.Logger
}

// NewSwitcherService creates a new SwitcherService. cache may be nil.
func NewSwitcherService(
	roster directory.MarketplaceCustomerRepository,
	customers directory.ErpCustomerRepository,
	orders directory.OrderItemRepository,
	writer directory.MarketplaceAnnotationWriter,
	cache ReportCache,
	policy resolution.MatchPolicy,
	filter resolution.DirectOrderFilter,
	logger *zap.Logger,
) *SwitcherService {
	return &SwitcherService{
		roster:    roster,
		customers: customers,
		orders:    orders,
		writer:    writer,
		cache:     cache,
		cacheTTL:  switcherCacheTTL,
		policy:    policy,
		filter:    filter,
		logger:    logger,
	}
}

// SetCacheTTL overrides how long cached switcher reports stay valid.
func (s *SwitcherService) SetCacheTTL(ttl time.Duration) {
	if ttl > 0 {
		s.cacheTTL = ttl
	}
}

// Run executes one switcher analysis. Write runs bypass the cache so the
// persisted annotations always reflect a fresh computation.
func (s *SwitcherService) Run(ctx context.Context, req SwitcherRequest) (*SwitcherReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "resolution", "switcher_run")
	defer span.End()

	started := time.Now()
	if req.Mode == "" {
		req.Mode = ModeStrict
	}
	if req.Limit <= 0 {
		req.Limit = defaultSwitcherLimit
	}

	cacheKey := fmt.Sprintf("%s:%s:%d", switcherCacheKeyPrefix, req.Mode, req.Limit)
	if s.cache != nil && !req.Rebuild && !req.Write {
		var cached SwitcherReport
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			s.logger.Warn("switcher cache read failed", zap.Error(err))
		} else if hit {
			cached.FromCache = true
			return &cached, nil
		}
	}

	roster, err := s.roster.LoadAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load marketplace roster: %w", err)
	}
	customers, err := s.customers.LoadAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load erp customers: %w", err)
	}
	lines, err := s.orders.LoadAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load order items: %w", err)
	}

	candidates, byStrict, byLoose := s.buildCandidates(customers, lines)
	s.logger.Info("switcher run datasets loaded",
		zap.String("mode", req.Mode),
		zap.Int("roster", len(roster)),
		zap.Int("direct_customers", len(candidates)))

	report := &SwitcherReport{
		RunID:           uuid.New().String(),
		Mode:            req.Mode,
		RosterLoaded:    len(roster),
		DirectCustomers: len(candidates),
	}

	entries := make([]SwitcherEntry, 0, len(roster))
	seenKeys := make(map[string]bool)

	for i := range roster {
		mc := &roster[i]
		if mc.IsPlaceholder() {
			report.PlaceholdersSkipped++
			continue
		}

		best, alternatives := s.findCandidate(req.Mode, mc, byStrict, byLoose)
		if best == nil {
			continue
		}
		report.Matched++

		key := resolution.SwitcherKey(best.customer.ID, mc.BillingAddress, mc.BillingCity)
		if seenKeys[key] {
			report.Deduplicated++
			continue
		}
		seenKeys[key] = true

		entry := s.buildEntry(req.Mode, mc, best, alternatives)
		entries = append(entries, entry)
		if entry.IsSwitcher {
			report.Switchers++
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].MarketplaceRevenue.GreaterThan(entries[j].MarketplaceRevenue)
	})
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}
	report.Entries = entries

	if req.Write && len(entries) > 0 {
		written, err := s.persist(ctx, entries)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("write switcher annotations: %w", err)
		}
		report.Written = written
	}

	report.DurationMillis = time.Since(started).Milliseconds()

	if s.cache != nil && !req.Write {
		if err := s.cache.Set(ctx, cacheKey, report, s.cacheTTL); err != nil {
			s.logger.Warn("switcher cache write failed", zap.Error(err))
		}
	}

	s.logger.Info("switcher run complete",
		zap.Int("matched", report.Matched),
		zap.Int("switchers", report.Switchers),
		zap.Int("written", report.Written))
	return report, nil
}

// buildCandidates aggregates direct-order stats per ERP customer and builds
// the strict (address|city|state|zip) and loose (city|state|zip) location
// lookup maps. Order lines matching the marketplace pattern filter never
// count toward direct stats, and customers missing an address, city or
// state cannot be candidates.
func (s *SwitcherService) buildCandidates(
	customers []directory.ErpCustomer,
	lines []directory.OrderLineItem,
) ([]*directCandidate, map[string][]*directCandidate, map[string][]*directCandidate) {
	statsByCustomer := make(map[string]*directStats)
	for i := range lines {
		line := &lines[i]
		if line.OrderNumber == "" || line.CustomerID == "" {
			continue
		}
		if s.filter.IsMarketplacePattern(line.OrderNumber, line.BillingName, line.SalesRep) {
			continue
		}
		st := statsByCustomer[line.CustomerID]
		if st == nil {
			st = &directStats{revenue: decimal.Zero, seen: make(map[string]bool)}
			statsByCustomer[line.CustomerID] = st
		}
		if !st.seen[line.OrderNumber] {
			st.seen[line.OrderNumber] = true
			st.orders++
		}
		st.revenue = st.revenue.Add(line.Revenue)
		if d := line.PostingDate; d != nil {
			if st.first == nil || d.Before(*st.first) {
				st.first = d
			}
			if st.last == nil || d.After(*st.last) {
				st.last = d
				st.lastRep = line.SalesRep
			}
		}
	}

	candidates := make([]*directCandidate, 0, len(customers))
	byStrict := make(map[string][]*directCandidate)
	byLoose := make(map[string][]*directCandidate)
	for i := range customers {
		c := &customers[i]
		if strings.TrimSpace(c.Address()) == "" ||
			strings.TrimSpace(c.City()) == "" ||
			strings.TrimSpace(c.State()) == "" {
			continue
		}
		cand := &directCandidate{
			customer:    c,
			stats:       statsByCustomer[c.ID],
			normName:    resolution.NormalizeName(c.Name),
			normAddress: resolution.NormalizeAddress(c.Address()),
			zip:         resolution.NormalizeZip(c.Zip()),
		}
		candidates = append(candidates, cand)
		strictKey, looseKey := locationKeys(c.Address(), c.City(), c.State(), c.Zip())
		byStrict[strictKey] = append(byStrict[strictKey], cand)
		byLoose[looseKey] = append(byLoose[looseKey], cand)
	}
	return candidates, byStrict, byLoose
}

// findCandidate picks the best direct candidate for one roster customer and
// returns how many other candidates were in contention. Strict mode only
// consults the full-address key; loose mode falls back to city|state|zip
// when the address key has no candidates. Names never gate the lookup, they
// only break ties among candidates sharing a location key.
func (s *SwitcherService) findCandidate(
	mode string,
	mc *directory.MarketplaceCustomer,
	byStrict, byLoose map[string][]*directCandidate,
) (*directCandidate, int) {
	strictKey, looseKey := locationKeys(mc.BillingAddress, mc.BillingCity, mc.BillingState, mc.BillingZip)
	pool := byStrict[strictKey]
	if len(pool) == 0 && mode == ModeLoose {
		pool = byLoose[looseKey]
	}
	if len(pool) == 0 {
		return nil, 0
	}

	src := resolution.TieBreakFields{
		Name:    resolution.NormalizeName(mc.BusinessName),
		Address: resolution.NormalizeAddress(mc.BillingAddress),
		Zip:     resolution.NormalizeZip(mc.BillingZip),
	}
	best := pool[0]
	bestScore := -1
	for _, cand := range pool {
		score := s.policy.Score(src, resolution.TieBreakFields{
			Name:    cand.normName,
			Address: cand.normAddress,
			Zip:     cand.zip,
		})
		if score > bestScore {
			best = cand
			bestScore = score
		}
	}
	return best, len(pool) - 1
}

func (s *SwitcherService) buildEntry(mode string, mc *directory.MarketplaceCustomer, cand *directCandidate, alternatives int) SwitcherEntry {
	src := resolution.TieBreakFields{
		Name:    resolution.NormalizeName(mc.BusinessName),
		Address: resolution.NormalizeAddress(mc.BillingAddress),
		Zip:     resolution.NormalizeZip(mc.BillingZip),
	}
	score := s.policy.Score(src, resolution.TieBreakFields{
		Name:    cand.normName,
		Address: cand.normAddress,
		Zip:     cand.zip,
	})

	rep := cand.customer.OriginalOwner
	if rep == "" {
		rep = cand.customer.SalesPerson
	}
	if rep == "" && cand.stats != nil {
		rep = cand.stats.lastRep
	}

	entry := SwitcherEntry{
		MarketplaceCustomerID: mc.ID,
		BusinessName:          mc.BusinessName,
		City:                  mc.BillingCity,
		State:                 mc.BillingState,
		DirectCustomerID:      cand.customer.ID,
		DirectCustomerName:    cand.customer.Name,
		OriginalRep:           rep,
		MatchMode:             mode,
		MatchScore:            score,
		Alternatives:          alternatives,
		DirectRevenue:         decimal.Zero,
		MarketplaceOrders:     mc.TotalOrders,
		MarketplaceRevenue:    mc.LifetimeValue,
		FirstMarketplaceOrder: mc.FirstOrderDate,
	}

	if st := cand.stats; st != nil {
		entry.DirectOrders = st.orders
		entry.DirectRevenue = st.revenue
		entry.LastDirectOrder = st.last
	}

	// A switch requires the direct relationship to end strictly before the
	// marketplace one begins. Overlap means the customer still orders direct.
	if entry.LastDirectOrder != nil && mc.FirstOrderDate != nil &&
		entry.LastDirectOrder.Before(*mc.FirstOrderDate) {
		entry.IsSwitcher = true
		entry.SwitchDate = mc.FirstOrderDate
		entry.GapDays = int(mc.FirstOrderDate.Sub(*entry.LastDirectOrder).Hours() / 24)
	}

	return entry
}

func (s *SwitcherService) persist(ctx context.Context, entries []SwitcherEntry) (int, error) {
	updates := make([]directory.CustomerAnnotationUpdate, 0, len(entries))
	for _, e := range entries {
		update := directory.CustomerAnnotationUpdate{
			CustomerID: e.MarketplaceCustomerID,
			Match: &directory.MatchAnnotation{
				ErpCustomerID:   e.DirectCustomerID,
				ErpBusinessName: e.DirectCustomerName,
				OriginalRep:     e.OriginalRep,
				MatchMode:       e.MatchMode,
				MatchScore:      e.MatchScore,
				Alternatives:    e.Alternatives,
			},
			Switcher: &directory.SwitcherAnnotation{
				IsSwitcher:      e.IsSwitcher,
				SwitchDate:      e.SwitchDate,
				GapDays:         e.GapDays,
				LastDirectOrder: e.LastDirectOrder,
				DirectOrders:    e.DirectOrders,
				DirectRevenue:   e.DirectRevenue,
				FirstOrder:      e.FirstMarketplaceOrder,
				Orders:          e.MarketplaceOrders,
				Revenue:         e.MarketplaceRevenue,
			},
		}
		updates = append(updates, update)
	}
	return s.writer.ApplyAnnotations(ctx, updates)
}
