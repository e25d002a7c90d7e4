package CronJobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"Motorhouse/Models"
	"Motorhouse/Sync"

	"github.com/robfig/cron/v3"
)

// OverdueDays is how long an unpaid invoice may sit before the daily
// job flags it as overdue.
const OverdueDays = 14

// OverdueChecker represents a scheduled overdue-invoice check service
type OverdueChecker struct {
	cronScheduler  *cron.Cron
	sync           *Sync.Coordinator
	overdueDays    int
	runImmediately bool
	jobID          cron.EntryID
}

// NewOverdueChecker creates a new overdue checker with the given configuration
func NewOverdueChecker(coordinator *Sync.Coordinator, overdueDays int, runImmediately bool) *OverdueChecker {
	if overdueDays <= 0 {
		overdueDays = OverdueDays
	}
	return &OverdueChecker{
		cronScheduler:  cron.New(cron.WithSeconds()),
		sync:           coordinator,
		overdueDays:    overdueDays,
		runImmediately: runImmediately,
	}
}

// Start initiates the overdue checker cron job
func (o *OverdueChecker) Start() error {
	var err error
	o.jobID, err = o.cronScheduler.AddFunc("0 0 1 * * *", func() {
		log.Println("Running scheduled daily overdue invoice check")
		o.runOverdueCheck()
	})

	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}

	o.cronScheduler.Start()
	log.Println("Overdue invoice scheduler started - will run daily at 1:00 AM")

	if o.runImmediately {
		log.Println("Running initial overdue invoice check")
		o.runOverdueCheck()
	}

	return nil
}

// Stop terminates the overdue checker
func (o *OverdueChecker) Stop() {
	if o.cronScheduler != nil {
		o.cronScheduler.Stop()
		log.Println("Overdue invoice scheduler stopped")
	}
}

// UpdateSchedule changes the schedule of the overdue checker
// Format: "0 0 1 * * *" = At 01:00:00 AM every day
func (o *OverdueChecker) UpdateSchedule(schedule string) error {
	o.cronScheduler.Remove(o.jobID)

	var err error
	o.jobID, err = o.cronScheduler.AddFunc(schedule, func() {
		log.Println("Running scheduled overdue invoice check")
		o.runOverdueCheck()
	})

	if err != nil {
		return fmt.Errorf("error updating schedule: %w", err)
	}

	log.Printf("Overdue check schedule updated to: %s\n", schedule)
	return nil
}

// RunManualCheck executes a manual overdue check
func (o *OverdueChecker) RunManualCheck() {
	log.Println("Running manual overdue invoice check")
	o.runOverdueCheck()
}

// runOverdueCheck marks unpaid invoices older than the cutoff as overdue
func (o *OverdueChecker) runOverdueCheck() {
	cutoff := time.Now().AddDate(0, 0, -o.overdueDays)

	var stale []*Models.Invoice
	o.sync.View(func(snap *Models.Snapshot) {
		for _, inv := range snap.Invoices {
			if inv.Type == Models.TypeQuote || inv.PaymentStatus != Models.PaymentUnpaid {
				continue
			}
			issued, err := time.Parse("02/01/2006", inv.Date)
			if err != nil {
				continue
			}
			if issued.Before(cutoff) {
				copied := *inv
				stale = append(stale, &copied)
			}
		}
	})

	if len(stale) == 0 {
		log.Println("No overdue invoices found")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, inv := range stale {
		inv.PaymentStatus = Models.PaymentOverdue
		warn, err := o.sync.Save(ctx, Models.CollInvoices, inv)
		if err != nil {
			log.Printf("Error marking invoice %s overdue: %v\n", inv.DisplayID, err)
			continue
		}
		if warn != "" {
			log.Printf("Marked invoice %s overdue with warning: %s\n", inv.DisplayID, warn)
		}
	}
	log.Printf("Marked %d invoice(s) as overdue\n", len(stale))
}
