package checkout

// Result describes a completed checkout. Any failures listed here were
// logged but did not stop the checkout.
type Result struct {
	OrderID      string
	Totals       Totals
	Adjusted     []StockAdjustment
	Skipped      []SkippedLine
	Failed       []*StockAdjustmentError
	EmailSent    bool
	Notification *NotificationDispatchError
}

type StockAdjustment struct {
	ItemID    string
	ProductID string
	Previous  int
	Updated   int
}

type SkipReason string

const (
	SkipMissingProduct    SkipReason = "missing_product_id"
	SkipInsufficientStock SkipReason = "insufficient_stock"
)

type SkippedLine struct {
	ItemID    string
	ProductID string
	Reason    SkipReason
}

// Degraded reports whether any best-effort step failed or was skipped.
func (r *Result) Degraded() bool {
	return len(r.Failed) > 0 || len(r.Skipped) > 0 || r.Notification != nil
}
