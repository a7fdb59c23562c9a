package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/citydex/outreach/internal/models"
	"github.com/citydex/outreach/internal/services"
	"github.com/citydex/outreach/pkg/logger"
)

const (
	defaultPromoteSpec = "@every 1m"
	defaultSendSpec    = "@every 1m"
)

// Dispatcher drives campaign delivery in the background: it promotes scheduled
// campaigns whose start time has arrived and runs one invitation batch per
// tick for every sending campaign.
type Dispatcher struct {
	db        *gorm.DB
	campaigns *services.CampaignService
	worker    *services.InvitationWorker
	cron      *cron.Cron
	log       *zap.Logger
	enabled   bool

	promoteSchedule string
	sendSchedule    string
}

// Option customises the Dispatcher.
type Option func(*Dispatcher)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(d *Dispatcher) {
		if c != nil {
			d.cron = c
		}
	}
}

// WithPromoteSchedule overrides the cron specification for promoting scheduled campaigns.
func WithPromoteSchedule(spec string) Option {
	return func(d *Dispatcher) {
		if spec != "" {
			d.promoteSchedule = spec
		}
	}
}

// WithSendSchedule overrides the cron specification for batch sending.
func WithSendSchedule(spec string) Option {
	return func(d *Dispatcher) {
		if spec != "" {
			d.sendSchedule = spec
		}
	}
}

// NewDispatcher constructs a Dispatcher with sensible defaults. Any nil
// dependency results in the corresponding job being skipped.
func NewDispatcher(db *gorm.DB, campaigns *services.CampaignService, worker *services.InvitationWorker, opts ...Option) *Dispatcher {
	dispatcher := &Dispatcher{
		db:              db,
		campaigns:       campaigns,
		worker:          worker,
		promoteSchedule: defaultPromoteSpec,
		sendSchedule:    defaultSendSpec,
		log:             logger.WithModule("dispatch"),
	}

	for _, opt := range opts {
		opt(dispatcher)
	}

	if dispatcher.cron == nil {
		dispatcher.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	dispatcher.enabled = dispatcher.campaigns != nil || (dispatcher.worker != nil && dispatcher.db != nil)

	return dispatcher
}

// Start registers the promote and send jobs with the cron scheduler and
// launches it if at least one job is enabled.
func (d *Dispatcher) Start() error {
	if !d.enabled {
		return nil
	}

	if d.campaigns != nil {
		if _, err := d.cron.AddFunc(d.promoteSchedule, func() {
			ctx := context.Background()
			if _, err := d.campaigns.PromoteScheduled(ctx); err != nil {
				d.log.Warn("promote scheduled campaigns failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if d.worker != nil && d.db != nil {
		if _, err := d.cron.AddFunc(d.sendSchedule, func() {
			if err := d.runSendingBatches(context.Background()); err != nil {
				d.log.Warn("batch dispatch failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	d.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (d *Dispatcher) Stop() context.Context {
	if d.cron == nil {
		return context.Background()
	}
	return d.cron.Stop()
}

// RunOnce executes one promote pass and one send pass sequentially. Primarily
// used in tests and during graceful shutdown.
func (d *Dispatcher) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if d.campaigns != nil {
		if _, err := d.campaigns.PromoteScheduled(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if d.worker != nil && d.db != nil {
		if err := d.runSendingBatches(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// runSendingBatches runs one batch for each campaign currently in sending.
// A campaign whose lease is held by another invocation is skipped, not failed.
func (d *Dispatcher) runSendingBatches(ctx context.Context) error {
	var ids []string
	if err := d.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("status = ?", models.CampaignStatusSending).
		Order("created_at ASC").
		Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("dispatch: list sending campaigns: %w", err)
	}

	var errs error
	for _, id := range ids {
		result, err := d.worker.RunBatch(ctx, id, 0)
		if err != nil {
			if errors.Is(err, services.ErrCampaignBusy) {
				continue
			}
			errs = multierr.Append(errs, fmt.Errorf("dispatch: campaign %s: %w", id, err))
			continue
		}
		d.log.Debug("batch dispatched",
			zap.String("campaign_id", id),
			zap.Int("sent", result.Sent),
			zap.Int("failed", result.Failed),
			zap.String("status", result.Status),
		)
	}
	return errs
}
