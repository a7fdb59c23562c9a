package services

import "errors"

var (
	// ErrCampaignNotFound indicates no campaign matches the provided id.
	ErrCampaignNotFound = errors.New("campaign: not found")
	// ErrCampaignBusy signals that another worker invocation holds the campaign lease.
	ErrCampaignBusy = errors.New("campaign: batch already in progress")
	// ErrInvalidTransition reports an illegal campaign status change.
	ErrInvalidTransition = errors.New("campaign: invalid status transition")
	// ErrLeadNotFound indicates no lead matches the provided id.
	ErrLeadNotFound = errors.New("lead: not found")
	// ErrTemplateNotFound indicates no invite template matches the provided id.
	ErrTemplateNotFound = errors.New("template: not found")
	// ErrUnknownEngagement reports an unrecognised engagement event kind.
	ErrUnknownEngagement = errors.New("lead: unknown engagement event")
)
