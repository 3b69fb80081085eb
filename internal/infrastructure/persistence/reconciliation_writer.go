package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/salesops/backend/internal/domain/directory"
	"github.com/salesops/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultWriterBatchSize is the write batch size used when none is
// configured.
const DefaultWriterBatchSize = 400

// ReconciliationWriter persists derived linking and annotation fields in
// batched merge-upserts. Each upsert assigns only the derived columns, so
// source columns are never touched and re-running the same inputs converges
// to the same stored state.
type ReconciliationWriter struct {
	db        *gorm.DB
	batchSize int
	logger    *zap.Logger
}

// NewReconciliationWriter creates a writer with the given batch size.
func NewReconciliationWriter(db *gorm.DB, batchSize int, logger *zap.Logger) *ReconciliationWriter {
	if batchSize <= 0 {
		batchSize = DefaultWriterBatchSize
	}
	return &ReconciliationWriter{db: db, batchSize: batchSize, logger: logger}
}

var erpLinkColumns = []string{
	"crm_company_id", "crm_company_name", "crm_match_type", "crm_confidence", "crm_matched_at",
}

// ApplyLinks merges derived CRM link fields onto ERP customer rows.
func (w *ReconciliationWriter) ApplyLinks(ctx context.Context, updates []directory.CustomerLinkUpdate) (int, error) {
	written := 0
	err := w.inBatches(ctx, len(updates), func(lo, hi int) error {
		rows := make([]models.ErpCustomerModel, 0, hi-lo)
		for _, u := range updates[lo:hi] {
			matchedAt := u.Link.MatchedAt
			rows = append(rows, models.ErpCustomerModel{
				ID:             u.CustomerID,
				CrmCompanyID:   u.Link.CompanyID,
				CrmCompanyName: u.Link.CompanyName,
				CrmMatchType:   u.Link.MatchType,
				CrmConfidence:  u.Link.Confidence,
				CrmMatchedAt:   &matchedAt,
			})
		}
		if err := w.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(erpLinkColumns),
		}).Create(&rows).Error; err != nil {
			return fmt.Errorf("merge link batch [%d:%d]: %w", lo, hi, err)
		}
		written += hi - lo
		return nil
	})
	return written, err
}

var annotationColumns = []string{
	"match_erp_customer_id", "match_erp_business_name", "match_original_rep",
	"match_mode", "match_score", "match_alternatives",
	"switcher_is_switcher", "switcher_switch_date", "switcher_gap_days",
	"switcher_last_direct_order", "switcher_direct_orders", "switcher_direct_revenue",
	"switcher_first_order", "switcher_orders", "switcher_revenue",
}

// ApplyAnnotations merges derived match/switcher blocks onto marketplace
// customer rows.
func (w *ReconciliationWriter) ApplyAnnotations(ctx context.Context, updates []directory.CustomerAnnotationUpdate) (int, error) {
	written := 0
	err := w.inBatches(ctx, len(updates), func(lo, hi int) error {
		rows := make([]models.MarketplaceCustomerModel, 0, hi-lo)
		for _, u := range updates[lo:hi] {
			row := models.MarketplaceCustomerModel{ID: u.CustomerID}
			if m := u.Match; m != nil {
				row.MatchErpCustomerID = m.ErpCustomerID
				row.MatchErpBusinessName = m.ErpBusinessName
				row.MatchOriginalRep = m.OriginalRep
				row.MatchMode = m.MatchMode
				row.MatchScore = m.MatchScore
				row.MatchAlternatives = m.Alternatives
			}
			if s := u.Switcher; s != nil {
				row.SwitcherIsSwitcher = s.IsSwitcher
				row.SwitcherSwitchDate = s.SwitchDate
				row.SwitcherGapDays = s.GapDays
				row.SwitcherLastDirectOrder = s.LastDirectOrder
				row.SwitcherDirectOrders = s.DirectOrders
				row.SwitcherDirectRevenue = s.DirectRevenue
				row.SwitcherFirstOrder = s.FirstOrder
				row.SwitcherOrders = s.Orders
				row.SwitcherRevenue = s.Revenue
			}
			rows = append(rows, row)
		}
		if err := w.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(annotationColumns),
		}).Create(&rows).Error; err != nil {
			return fmt.Errorf("merge annotation batch [%d:%d]: %w", lo, hi, err)
		}
		written += hi - lo
		return nil
	})
	return written, err
}

var rosterColumns = []string{
	"business_name", "billing_address", "billing_city", "billing_state", "billing_zip",
	"total_orders", "lifetime_value", "first_order_date", "last_order_date",
	"source", "updated_at",
}

// UpsertRoster merges extracted roster rows, keyed by billing identity.
// Existing derived annotations survive a re-extraction.
func (w *ReconciliationWriter) UpsertRoster(ctx context.Context, customers []directory.MarketplaceCustomer) (int, error) {
	written := 0
	now := time.Now().UTC()
	err := w.inBatches(ctx, len(customers), func(lo, hi int) error {
		rows := make([]models.MarketplaceCustomerModel, hi-lo)
		for i := range customers[lo:hi] {
			rows[i].FromDomain(&customers[lo+i])
			rows[i].UpdatedAt = now
		}
		if err := w.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(rosterColumns),
		}).Create(&rows).Error; err != nil {
			return fmt.Errorf("merge roster batch [%d:%d]: %w", lo, hi, err)
		}
		written += hi - lo
		return nil
	})
	return written, err
}

// inBatches walks [0,total) in writer-sized slices, checking the context
// between batches so a cancelled run stops at a batch boundary.
func (w *ReconciliationWriter) inBatches(ctx context.Context, total int, fn func(lo, hi int) error) error {
	for lo := 0; lo < total; lo += w.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		hi := lo + w.batchSize
		if hi > total {
			hi = total
		}
		if err := fn(lo, hi); err != nil {
			return err
		}
		w.logger.Debug("reconciliation batch committed",
			zap.Int("from", lo), zap.Int("to", hi), zap.Int("total", total))
	}
	return nil
}
