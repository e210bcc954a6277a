package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/vitrineapp/partner-go/internal/domain/model"
)

func runNotificationStats(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("notification-stats", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	return withServices(cmdCtx, func(ctx context.Context, services serviceSet) error {
		stats, err := services.Notifications.Stats(ctx)
		if err != nil {
			return err
		}
		return printJSON(stats)
	})
}

func runListFailedNotifications(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-failed-notifications", flag.ContinueOnError)
	limit := fs.Int("limit", 50, "maximum rows")
	offset := fs.Int("offset", 0, "rows to skip")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return withServices(cmdCtx, func(ctx context.Context, services serviceSet) error {
		jobs, err := services.Notifications.ListFailed(ctx, *limit, *offset)
		if err != nil {
			return err
		}
		return printNotificationTable(jobs)
	})
}

func printNotificationTable(jobs []*model.NotificationJob) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tKIND\tRECIPIENT\tATTEMPTS\tLAST_ERROR\tUPDATED"); err != nil {
		return err
	}
	for _, job := range jobs {
		lastErr := ""
		if job.LastError != nil {
			lastErr = *job.LastError
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			job.ID, job.Kind, job.Recipient, job.Attempts, job.MaxAttempts, lastErr,
			job.UpdatedAt.Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return w.Flush()
}
