package resolution

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/salesops/backend/internal/domain/directory"
	"github.com/salesops/backend/internal/domain/resolution"
	"github.com/salesops/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// LinkService runs the ERP-to-CRM identity linking flow: load both
// directories, build the identity index over the CRM side, run the strategy
// cascade over every unlinked ERP customer and, for apply runs, persist the
// derived link fields.
type LinkService struct {
	companies directory.CrmCompanyRepository
	customers directory.ErpCustomerRepository
	writer    directory.ErpLinkWriter
	policy    resolution.MatchPolicy
	logger    *zap.Logger
}

// NewLinkService creates a new LinkService.
func NewLinkService(
	companies directory.CrmCompanyRepository,
	customers directory.ErpCustomerRepository,
	writer directory.ErpLinkWriter,
	policy resolution.MatchPolicy,
	logger *zap.Logger,
) *LinkService {
	return &LinkService{
		companies: companies,
		customers: customers,
		writer:    writer,
		policy:    policy,
		logger:    logger,
	}
}

// Run executes one linking run. Load failures abort before any write; apply
// runs only write after the full match pass completes.
func (s *LinkService) Run(ctx context.Context, req LinkRequest) (*LinkReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "resolution", "link_run")
	defer span.End()

	started := time.Now()

	companies, err := s.companies.LoadAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load crm companies: %w", err)
	}
	customers, err := s.customers.LoadAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load erp customers: %w", err)
	}
	s.logger.Info("link run datasets loaded",
		zap.Int("companies", len(companies)),
		zap.Int("customers", len(customers)),
		zap.String("action", req.Action))

	references := make([]resolution.ReferenceRecord, 0, len(companies))
	for i := range companies {
		c := &companies[i]
		references = append(references, resolution.ReferenceRecord{
			ID:         c.ID,
			AccountID:  c.AccountID,
			CrossRefID: c.AccountOrderID,
			Name:       c.Name,
			Address:    c.Street,
			Zip:        resolution.NormalizeZip(c.PostalCode),
		})
	}
	index := resolution.BuildIdentityIndex(references, s.policy)
	accountIDs, crossRefs, addresses := index.Sizes()

	report := &LinkReport{
		RunID:           uuid.New().String(),
		Action:          req.Action,
		CompaniesLoaded: len(companies),
		CustomersLoaded: len(customers),
		Index: IndexSummary{
			AccountIDs:         accountIDs,
			CrossRefs:          crossRefs,
			Addresses:          addresses,
			AmbiguousAddresses: index.AmbiguousAddresses,
		},
	}

	sources := make([]resolution.SourceRecord, 0, len(customers))
	for i := range customers {
		c := &customers[i]
		sources = append(sources, resolution.SourceRecord{
			ID:            c.ID,
			Name:          c.Name,
			PrimaryID:     c.AccountID,
			SecondaryID:   c.AccountNumber,
			Address:       c.Address(),
			Zip:           resolution.NormalizeZip(c.Zip()),
			AlreadyLinked: c.IsLinked(),
		})
	}

	matcher := resolution.NewMatcher(index, s.policy)
	results, stats := matcher.MatchAll(sources)
	report.Stats = stats
	report.AlreadyLinked = stats.UnmatchedReason.AlreadyLinked

	report.Matches = make([]LinkMatch, 0, len(results))
	for _, r := range results {
		report.Matches = append(report.Matches, LinkMatch{
			CustomerID:   r.SourceID,
			CustomerName: r.SourceName,
			CompanyID:    r.ReferenceID,
			CompanyName:  r.ReferenceName,
			Strategy:     string(r.Strategy),
			Confidence:   string(r.Confidence),
		})
	}

	s.logger.Info("link run matched",
		zap.Int("matched", stats.Matched),
		zap.Int("unmatched", stats.Unmatched),
		zap.Int("ambiguous_addresses", index.AmbiguousAddresses))

	if req.Action == "apply" && len(results) > 0 {
		updates := make([]directory.CustomerLinkUpdate, 0, len(results))
		now := time.Now().UTC()
		for _, r := range results {
			updates = append(updates, directory.CustomerLinkUpdate{
				CustomerID: r.SourceID,
				Link: directory.CrmLink{
					CompanyID:   r.ReferenceID,
					CompanyName: r.ReferenceName,
					MatchType:   string(r.Strategy),
					Confidence:  string(r.Confidence),
					MatchedAt:   now,
				},
			})
		}
		applied, err := s.writer.ApplyLinks(ctx, updates)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("apply links: %w", err)
		}
		report.Applied = applied
		s.logger.Info("link run applied", zap.Int("applied", applied))
	}

	report.DurationMillis = time.Since(started).Milliseconds()
	return report, nil
}
