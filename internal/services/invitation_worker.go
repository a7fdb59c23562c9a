package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/citydex/outreach/internal/models"
	"github.com/citydex/outreach/pkg/crypto"
	"github.com/citydex/outreach/pkg/logger"
	"github.com/citydex/outreach/pkg/mail"
	"github.com/citydex/outreach/pkg/metrics"
)

const (
	defaultBatchSize     = 50
	defaultSendDelay     = 100 * time.Millisecond
	defaultClaimTokenTTL = 7 * 24 * time.Hour
	defaultLeaseTTL      = 5 * time.Minute
	claimTokenBytes      = 32
)

// WorkerOption customises InvitationWorker behaviour.
type WorkerOption func(*InvitationWorker)

// WithClaimBaseURL configures the public base URL embedded in claim links.
func WithClaimBaseURL(baseURL string) WorkerOption {
	return func(w *InvitationWorker) {
		w.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithDefaultBatchSize overrides the batch size used when callers pass zero.
func WithDefaultBatchSize(size int) WorkerOption {
	return func(w *InvitationWorker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

// WithSendDelay adjusts the fixed pause between consecutive sends.
func WithSendDelay(d time.Duration) WorkerOption {
	return func(w *InvitationWorker) {
		if d >= 0 {
			w.sendDelay = d
		}
	}
}

// WithClaimTokenTTL overrides the claim token lifetime.
func WithClaimTokenTTL(d time.Duration) WorkerOption {
	return func(w *InvitationWorker) {
		if d > 0 {
			w.tokenTTL = d
		}
	}
}

// WithLeaseTTL overrides how long a batch invocation may hold the campaign
// lease before a competing invocation is allowed to reclaim it.
func WithLeaseTTL(d time.Duration) WorkerOption {
	return func(w *InvitationWorker) {
		if d > 0 {
			w.leaseTTL = d
		}
	}
}

// WithWorkerClock injects a custom clock primarily for testing.
func WithWorkerClock(clock func() time.Time) WorkerOption {
	return func(w *InvitationWorker) {
		if clock != nil {
			w.now = clock
		}
	}
}

// InvitationWorker sends one bounded batch of a campaign's outstanding claim
// invitations per invocation. Invocations are idempotent and resumable: a
// lead flips to "sent" immediately after a successful dispatch, so it can
// never be selected again, and re-running after a crash simply resumes at the
// next unsent lead. The unit of atomicity is the single lead, not the batch.
type InvitationWorker struct {
	db        *gorm.DB
	mailer    mail.Mailer
	baseURL   string
	batchSize int
	sendDelay time.Duration
	tokenTTL  time.Duration
	leaseTTL  time.Duration
	now       func() time.Time
	log       *zap.Logger
}

// NewInvitationWorker constructs an InvitationWorker with the provided
// dependencies. The mailer is required; without one there is nothing to do.
func NewInvitationWorker(db *gorm.DB, mailer mail.Mailer, opts ...WorkerOption) (*InvitationWorker, error) {
	if db == nil {
		return nil, errors.New("invitation worker: db is required")
	}
	if mailer == nil {
		return nil, errors.New("invitation worker: mailer is required")
	}

	worker := &InvitationWorker{
		db:        db,
		mailer:    mailer,
		batchSize: defaultBatchSize,
		sendDelay: defaultSendDelay,
		tokenTTL:  defaultClaimTokenTTL,
		leaseTTL:  defaultLeaseTTL,
		now:       time.Now,
		log:       logger.WithModule("invitation_worker"),
	}

	for _, opt := range opts {
		opt(worker)
	}

	return worker, nil
}

// BatchResult summarises one worker invocation.
type BatchResult struct {
	Sent   int    `json:"sent"`
	Failed int    `json:"failed"`
	Status string `json:"campaign_status"`
}

// RunBatch processes one bounded batch of eligible leads for a campaign.
//
// An empty selection is the authoritative completion signal: the campaign is
// marked completed and the invocation returns immediately. Otherwise each
// selected lead gets a fresh claim token, a rendered invitation, and one
// delivery attempt; delivery failures are counted and skipped, never fatal.
// After the loop the remaining eligible count decides whether the campaign is
// done. Store failures abort the invocation but leave state safe to retry.
func (w *InvitationWorker) RunBatch(ctx context.Context, campaignID string, batchSize int) (BatchResult, error) {
	if batchSize <= 0 {
		batchSize = w.batchSize
	}

	campaign, err := w.loadCampaign(ctx, campaignID)
	if err != nil {
		return BatchResult{}, err
	}

	// Terminal and paused campaigns are a no-op; the trigger surface may
	// legitimately fire after completion.
	if models.IsTerminalStatus(campaign.Status) || campaign.Status == models.CampaignStatusPaused {
		return BatchResult{Status: campaign.Status}, nil
	}

	if campaign.Status == models.CampaignStatusDraft || campaign.Status == models.CampaignStatusScheduled {
		if err := w.markSending(ctx, campaign); err != nil {
			return BatchResult{}, err
		}
		campaign.Status = models.CampaignStatusSending
	}

	leaseOwner := uuid.NewString()
	if err := w.acquireLease(ctx, campaign.ID, leaseOwner); err != nil {
		return BatchResult{Status: campaign.Status}, err
	}
	defer w.releaseLease(campaign.ID, leaseOwner)

	template, err := w.resolveTemplate(ctx, campaign)
	if err != nil {
		return BatchResult{}, err
	}

	var batch []models.Lead
	if err := w.db.WithContext(ctx).
		Model(&models.Lead{}).
		Scopes(EligibleLeads(campaign)).
		Order("created_at ASC, id ASC").
		Limit(batchSize).
		Find(&batch).Error; err != nil {
		return BatchResult{}, fmt.Errorf("invitation worker: select batch: %w", err)
	}

	if len(batch) == 0 {
		if err := w.complete(ctx, campaign.ID); err != nil {
			return BatchResult{}, err
		}
		metrics.BatchRuns.WithLabelValues("completed").Inc()
		return BatchResult{Status: models.CampaignStatusCompleted}, nil
	}

	result := BatchResult{Status: models.CampaignStatusSending}
	aborted := false

	// Flush aggregate counters even when a store failure aborts the loop;
	// per-lead sends already persisted must be reflected in the rollups.
	defer func() {
		w.flushCounters(campaign, template, result.Sent)
	}()

	for i := range batch {
		lead := &batch[i]

		// Pause and cancel take effect between sends, not at batch
		// boundaries only.
		status, err := w.currentStatus(ctx, campaign.ID)
		if err != nil {
			return result, err
		}
		if status != models.CampaignStatusSending {
			result.Status = status
			aborted = true
			break
		}

		if err := w.sendInvitation(ctx, campaign, template, lead, &result); err != nil {
			return result, err
		}

		if result.Sent > 0 && i < len(batch)-1 && w.sendDelay > 0 {
			select {
			case <-ctx.Done():
				result.Status = models.CampaignStatusSending
				return result, ctx.Err()
			case <-time.After(w.sendDelay):
			}
		}
	}

	if aborted {
		metrics.BatchRuns.WithLabelValues("aborted").Inc()
		return result, nil
	}

	remaining, err := CountEligibleLeads(ctx, w.db, campaign)
	if err != nil {
		return result, fmt.Errorf("invitation worker: %w", err)
	}
	if remaining == 0 {
		if err := w.complete(ctx, campaign.ID); err != nil {
			return result, err
		}
		result.Status = models.CampaignStatusCompleted
		metrics.BatchRuns.WithLabelValues("completed").Inc()
		return result, nil
	}

	metrics.BatchRuns.WithLabelValues("sending").Inc()
	return result, nil
}

// sendInvitation issues one claim token, renders the invitation, attempts
// delivery, and persists the lead's new state. Delivery failures are counted
// on the result and skipped; store failures are returned and abort the batch.
func (w *InvitationWorker) sendInvitation(ctx context.Context, campaign *models.Campaign, template *models.InviteTemplate, lead *models.Lead, result *BatchResult) error {
	token, err := crypto.GenerateToken(claimTokenBytes)
	if err != nil {
		return fmt.Errorf("invitation worker: generate claim token: %w", err)
	}

	now := w.now()
	expiresAt := now.Add(w.tokenTTL)
	claimURL := w.claimURL(lead.ID, token)

	subject, body := RenderInvitation(template, lead, claimURL)

	if err := w.mailer.Send(ctx, mail.Message{
		To:      lead.OwnerEmail,
		Subject: subject,
		Body:    body,
	}); err != nil {
		result.Failed++
		metrics.InvitationsSent.WithLabelValues("failed").Inc()
		w.log.Warn("invitation delivery failed",
			zap.String("campaign_id", campaign.ID),
			zap.String("lead_id", lead.ID),
			zap.Error(err),
		)
		return nil
	}

	// The raw token travels only in the claim URL; the store keeps its hash
	// for the claim workflow to verify against.
	updates := map[string]any{
		"email_status":           models.EmailStatusSent,
		"invitation_count":       gorm.Expr("invitation_count + 1"),
		"is_invited":             true,
		"last_invited_at":        now,
		"last_campaign_id":       campaign.ID,
		"claim_token":            crypto.HashToken(token),
		"claim_token_expires_at": expiresAt,
	}
	if lead.InvitedAt == nil {
		// First successful send only; never overwritten afterwards.
		updates["invited_at"] = now
	}

	if err := w.db.WithContext(ctx).
		Model(&models.Lead{}).
		Where("id = ?", lead.ID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("invitation worker: persist send: %w", err)
	}

	result.Sent++
	metrics.InvitationsSent.WithLabelValues("sent").Inc()
	return nil
}

func (w *InvitationWorker) loadCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := w.db.WithContext(ctx).First(&campaign, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("invitation worker: load campaign: %w", err)
	}
	return &campaign, nil
}

// markSending flips a draft or scheduled campaign into sending on the first
// worker invocation.
func (w *InvitationWorker) markSending(ctx context.Context, campaign *models.Campaign) error {
	updates := map[string]any{"status": models.CampaignStatusSending}
	if campaign.StartedAt == nil {
		updates["started_at"] = w.now()
	}

	result := w.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ? AND status = ?", campaign.ID, campaign.Status).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("invitation worker: mark sending: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCampaignBusy
	}
	return nil
}

// acquireLease claims the campaign for this invocation with a compare-and-swap
// write. A concurrent invocation observes the active lease and aborts instead
// of racing on the same lead batch.
func (w *InvitationWorker) acquireLease(ctx context.Context, campaignID, owner string) error {
	now := w.now()
	result := w.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ? AND status = ?", campaignID, models.CampaignStatusSending).
		Where("lease_owner = '' OR lease_owner IS NULL OR lease_expires_at IS NULL OR lease_expires_at < ?", now).
		Updates(map[string]any{
			"lease_owner":      owner,
			"lease_expires_at": now.Add(w.leaseTTL),
		})
	if result.Error != nil {
		return fmt.Errorf("invitation worker: acquire lease: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCampaignBusy
	}
	return nil
}

// releaseLease clears the lease if this invocation still owns it. An expired
// lease reclaimed by another invocation is left alone.
func (w *InvitationWorker) releaseLease(campaignID, owner string) {
	if err := w.db.
		Model(&models.Campaign{}).
		Where("id = ? AND lease_owner = ?", campaignID, owner).
		Updates(map[string]any{
			"lease_owner":      "",
			"lease_expires_at": nil,
		}).Error; err != nil {
		w.log.Warn("release lease failed",
			zap.String("campaign_id", campaignID),
			zap.Error(err),
		)
	}
}

// resolveTemplate loads the campaign's bound template, falling back to the
// configured default. A nil return means the renderer's built-in fallback.
func (w *InvitationWorker) resolveTemplate(ctx context.Context, campaign *models.Campaign) (*models.InviteTemplate, error) {
	if campaign.TemplateID != nil {
		var template models.InviteTemplate
		err := w.db.WithContext(ctx).First(&template, "id = ?", *campaign.TemplateID).Error
		switch {
		case err == nil && template.IsActive:
			return &template, nil
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("invitation worker: load template: %w", err)
		}
	}

	var fallback models.InviteTemplate
	err := w.db.WithContext(ctx).
		Where("is_default = ? AND is_active = ?", true, true).
		First(&fallback).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("invitation worker: load default template: %w", err)
	}
	return &fallback, nil
}

func (w *InvitationWorker) currentStatus(ctx context.Context, campaignID string) (string, error) {
	var status string
	if err := w.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ?", campaignID).
		Pluck("status", &status).Error; err != nil {
		return "", fmt.Errorf("invitation worker: read status: %w", err)
	}
	return status, nil
}

// complete marks a campaign as finished. Only the worker ever sets completed.
func (w *InvitationWorker) complete(ctx context.Context, campaignID string) error {
	result := w.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ? AND status = ?", campaignID, models.CampaignStatusSending).
		Updates(map[string]any{
			"status":       models.CampaignStatusCompleted,
			"completed_at": w.now(),
		})
	if result.Error != nil {
		return fmt.Errorf("invitation worker: complete campaign: %w", result.Error)
	}
	return nil
}

// flushCounters adds the invocation's sent total to the campaign and template
// rollups as a single SQL increment each, never read-modify-write.
func (w *InvitationWorker) flushCounters(campaign *models.Campaign, template *models.InviteTemplate, sent int) {
	if sent == 0 {
		return
	}

	if err := w.db.
		Model(&models.Campaign{}).
		Where("id = ?", campaign.ID).
		UpdateColumn("sent_count", gorm.Expr("sent_count + ?", sent)).Error; err != nil {
		w.log.Error("flush campaign sent count failed",
			zap.String("campaign_id", campaign.ID),
			zap.Int("sent", sent),
			zap.Error(err),
		)
	}

	if template == nil {
		return
	}
	if err := w.db.
		Model(&models.InviteTemplate{}).
		Where("id = ?", template.ID).
		UpdateColumn("send_count", gorm.Expr("send_count + ?", sent)).Error; err != nil {
		w.log.Error("flush template send count failed",
			zap.String("template_id", template.ID),
			zap.Int("sent", sent),
			zap.Error(err),
		)
	}
}

func (w *InvitationWorker) claimURL(leadID, token string) string {
	query := url.Values{}
	query.Set("lead_id", leadID)
	query.Set("token", token)

	base := w.baseURL
	if base == "" {
		base = "/claim"
	} else {
		base += "/claim"
	}
	return base + "?" + query.Encode()
}
