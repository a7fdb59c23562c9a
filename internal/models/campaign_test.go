package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{CampaignStatusDraft, CampaignStatusScheduled},
		{CampaignStatusDraft, CampaignStatusSending},
		{CampaignStatusScheduled, CampaignStatusSending},
		{CampaignStatusSending, CampaignStatusPaused},
		{CampaignStatusSending, CampaignStatusCompleted},
		{CampaignStatusSending, CampaignStatusCancelled},
		{CampaignStatusPaused, CampaignStatusSending},
		{CampaignStatusPaused, CampaignStatusCancelled},
	}
	for _, tc := range allowed {
		require.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be legal", tc.from, tc.to)
	}

	denied := []struct{ from, to string }{
		{CampaignStatusDraft, CampaignStatusPaused},
		{CampaignStatusDraft, CampaignStatusCompleted},
		{CampaignStatusScheduled, CampaignStatusPaused},
		{CampaignStatusPaused, CampaignStatusCompleted},
		{CampaignStatusCompleted, CampaignStatusSending},
		{CampaignStatusCancelled, CampaignStatusSending},
		{CampaignStatusSending, CampaignStatusDraft},
	}
	for _, tc := range denied {
		require.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be illegal", tc.from, tc.to)
	}
}

func TestIsTerminalStatus(t *testing.T) {
	require.True(t, IsTerminalStatus(CampaignStatusCompleted))
	require.True(t, IsTerminalStatus(CampaignStatusCancelled))
	require.False(t, IsTerminalStatus(CampaignStatusSending))
	require.False(t, IsTerminalStatus(CampaignStatusPaused))
}
