package Sync

import (
	"context"
	"fmt"
	"log"
	"time"
)

// FormatInvoiceNumber renders the human-facing sequential identifier,
// e.g. the 7th invoice of 2025 is INV-2025-0007.
func FormatInvoiceNumber(year, seq int) string {
	return fmt.Sprintf("INV-%d-%04d", year, seq)
}

// NextInvoiceNumber produces the next display identifier for the
// current year. The transactional remote counter is preferred so
// numbers stay unique across devices; on any failure, or when
// offline, the non-atomic local counter takes over. The choice is
// re-evaluated on every call.
func (c *Coordinator) NextInvoiceNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()

	if c.Online() && c.remote != nil {
		seq, err := c.remote.NextInvoiceSequence(ctx, year)
		if err == nil {
			return FormatInvoiceNumber(year, int(seq)), nil
		}
		log.Printf("Falling back to local invoice counter: %v", err)
	}

	seq, err := c.local.IncrementCounter(year)
	if err != nil {
		return "", fmt.Errorf("local invoice counter: %w", err)
	}
	return FormatInvoiceNumber(year, seq), nil
}
