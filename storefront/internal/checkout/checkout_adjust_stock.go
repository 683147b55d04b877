package checkout

import (
	"context"

	"github.com/fjod/ecomart/storefront/internal/guestcart"
	"github.com/rs/zerolog"
)

// adjustStock patches each product to its snapshot stock minus the ordered
// quantity, one call at a time. A failure on one line never stops the
// others and nothing is rolled back. There is no version check, so two
// concurrent checkouts of the same product can overwrite each other.
func (s *Service) adjustStock(ctx context.Context, log zerolog.Logger, items []guestcart.Item, res *Result) {
	for _, item := range items {
		if item.ProductID == "" {
			log.Warn().Str("item_id", item.ID).Msg("cart line has no product id, skipping stock update")
			res.Skipped = append(res.Skipped, SkippedLine{ItemID: item.ID, Reason: SkipMissingProduct})
			continue
		}

		updated := item.StockQuantity - item.Quantity
		if updated < 0 {
			log.Warn().
				Str("product_id", item.ProductID).
				Int("stock", item.StockQuantity).
				Int("quantity", item.Quantity).
				Msg("not enough stock recorded, skipping stock update")
			res.Skipped = append(res.Skipped, SkippedLine{ItemID: item.ID, ProductID: item.ProductID, Reason: SkipInsufficientStock})
			continue
		}

		if err := s.patchStock(ctx, item.ProductID, updated); err != nil {
			stockErr := &StockAdjustmentError{ItemID: item.ID, ProductID: item.ProductID, Updated: updated, Err: err}
			log.Error().Err(err).Str("product_id", item.ProductID).Int("stock", updated).Msg("stock update failed")
			res.Failed = append(res.Failed, stockErr)
			continue
		}

		log.Debug().Str("product_id", item.ProductID).Int("stock", updated).Msg("stock updated")
		res.Adjusted = append(res.Adjusted, StockAdjustment{
			ItemID:    item.ID,
			ProductID: item.ProductID,
			Previous:  item.StockQuantity,
			Updated:   updated,
		})
	}
}

func (s *Service) patchStock(ctx context.Context, productID string, updated int) error {
	stepCtx, cancel := s.stepContext(ctx)
	defer cancel()
	_, err := s.stock.PatchStock(stepCtx, productID, updated)
	return err
}
