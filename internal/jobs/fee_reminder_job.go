package jobs

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"gym_crm_backend/internal/messaging"
	"gym_crm_backend/internal/models"
	"gym_crm_backend/pkg/utils"
)

// ReminderDays are the days-before-due on which a reminder goes out.
var ReminderDays = []int{7, 3, 0}

// ClientLister lists every client.
type ClientLister interface {
	ListAllClients(ctx context.Context) ([]models.Client, error)
}

// ReminderReport summarises one reminder run.
type ReminderReport struct {
	Scanned int `json:"scanned"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"` // due but without a phone number
}

// FeeReminderJob texts clients whose monthly fee is coming due.
type FeeReminderJob struct {
	clients ClientLister
	sender  messaging.Sender
	now     func() time.Time
}

// NewFeeReminderJob creates a new FeeReminderJob. A nil clock means time.Now.
func NewFeeReminderJob(clients ClientLister, sender messaging.Sender, clock func() time.Time) *FeeReminderJob {
	if clock == nil {
		clock = time.Now
	}
	return &FeeReminderJob{clients: clients, sender: sender, now: clock}
}

// NextFeeDate puts the anchor's day of month into the month after now's month,
// at midnight in now's location. Overflowing days roll into the month after
// (Jan 31 -> Mar 2 or 3). The result is recomputed from now on every call.
func NextFeeDate(anchor, now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()+1, anchor.Day(), 0, 0, 0, 0, now.Location())
}

// DaysUntil is the number of started days between now and due.
func DaysUntil(due, now time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

// isReminderDay reports whether days is one of ReminderDays.
func isReminderDay(days int) bool {
	for _, d := range ReminderDays {
		if d == days {
			return true
		}
	}
	return false
}

// ReminderMessage renders the text for a client due in days.
func ReminderMessage(client models.Client, due time.Time, days int) string {
	fee := ""
	if client.MonthlyFee.Valid {
		fee = " of " + client.MonthlyFee.Decimal.StringFixed(2)
	}
	date := due.Format("02.01.2006")

	switch days {
	case 0:
		return fmt.Sprintf("Hi %s, your monthly gym fee%s is due today (%s). Please pay at the front desk.", client.Name, fee, date)
	default:
		return fmt.Sprintf("Hi %s, a reminder that your monthly gym fee%s is due in %d days on %s.", client.Name, fee, days, date)
	}
}

// RunOnce evaluates every client and sends at most one message to each.
// Send failures are logged and counted; the loop always continues.
func (j *FeeReminderJob) RunOnce(ctx context.Context) (ReminderReport, error) {
	var report ReminderReport

	clients, err := j.clients.ListAllClients(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list clients for reminders: %w", err)
	}

	now := j.now()
	for _, client := range clients {
		report.Scanned++

		due := NextFeeDate(client.FeeSubmissionDate, now)
		days := DaysUntil(due, now)
		if !isReminderDay(days) {
			continue
		}
		if strings.TrimSpace(client.Phone) == "" {
			report.Skipped++
			continue
		}

		if err := j.sender.Send(ctx, client.Phone, ReminderMessage(client, due, days)); err != nil {
			report.Failed++
			utils.LogWarn(err, "Failed to send fee reminder", map[string]interface{}{
				"client_id": client.ID.String(),
				"days":      days,
			})
			continue
		}
		report.Sent++
	}

	utils.LogInfo("Fee reminder run finished", map[string]interface{}{
		"scanned": report.Scanned,
		"sent":    report.Sent,
		"failed":  report.Failed,
		"skipped": report.Skipped,
	})
	return report, nil
}

// Run adapts RunOnce to a RunFunc.
func (j *FeeReminderJob) Run(ctx context.Context) error {
	_, err := j.RunOnce(ctx)
	return err
}
