// Package report produces the scheduled category digest mailed to admins.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"html"
	"strings"

	"github.com/MohamedWael200/APi-eCommerce/internal/models"
	"github.com/MohamedWael200/APi-eCommerce/internal/store"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sender delivers a rendered report. Both mailers satisfy it.
type Sender interface {
	Send(to, subject, body string) error
}

type Daily struct {
	db     *sql.DB
	sender Sender
	log    *logrus.Logger
}

func NewDaily(db *sql.DB, sender Sender, log *logrus.Logger) *Daily {
	return &Daily{db: db, sender: sender, log: log}
}

// Schedule registers the report on the given cron spec and returns the
// started scheduler. Stop it on shutdown.
func (d *Daily) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if err := d.Run(context.Background()); err != nil {
			d.log.WithError(err).Error("daily category report failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule daily report: %w", err)
	}
	c.Start()
	return c, nil
}

// Run gathers every category and mails the digest to each admin. No admins or
// no categories means there is nothing to send.
func (d *Daily) Run(ctx context.Context) error {
	admins, err := store.AdminEmails(ctx, d.db)
	if err != nil {
		return err
	}
	if len(admins) == 0 {
		d.log.Warn("daily category report skipped, no admins")
		return nil
	}

	active, err := store.ListCategories(ctx, d.db, false)
	if err != nil {
		return err
	}
	deleted, err := store.ListCategories(ctx, d.db, true)
	if err != nil {
		return err
	}
	categories := append(active, deleted...)
	if len(categories) == 0 {
		d.log.Warn("daily category report skipped, no categories")
		return nil
	}

	body := renderCategoryReport(categories)

	sent := 0
	for _, email := range admins {
		if err := d.sender.Send(email, "Daily Category Report", body); err != nil {
			d.log.WithError(err).WithField("email", email).Error("failed to send category report")
			continue
		}
		sent++
	}

	d.log.WithFields(logrus.Fields{
		"admins":     sent,
		"categories": len(categories),
	}).Info("daily category report sent")

	return nil
}

func renderCategoryReport(categories []models.Category) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; padding: 20px;">`)
	b.WriteString(`<h2>Daily Category Report</h2>`)
	b.WriteString(`<p>Hello,</p><p>Here is the list of all categories:</p>`)
	b.WriteString(`<table style="border-collapse: collapse; width: 100%;">`)
	b.WriteString(`<thead><tr><th>#</th><th>Category Name</th><th>Status</th></tr></thead><tbody>`)

	for i, category := range categories {
		status := "Active"
		if category.IsDeleted {
			status = "Deleted"
		}
		fmt.Fprintf(&b, `<tr><td>%d</td><td>%s</td><td>%s</td></tr>`,
			i+1, html.EscapeString(category.Name), status)
	}

	b.WriteString(`</tbody></table><p>Have a great day!</p></div>`)
	return b.String()
}
