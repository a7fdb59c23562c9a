package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEngagementRankOrdering(t *testing.T) {
	// Bounce outranks a bare send but never a proven open or click.
	require.Less(t, EngagementRank(EmailStatusUnset), EngagementRank(EmailStatusNotSent))
	require.Less(t, EngagementRank(EmailStatusNotSent), EngagementRank(EmailStatusSent))
	require.Less(t, EngagementRank(EmailStatusSent), EngagementRank(EmailStatusBounced))
	require.Less(t, EngagementRank(EmailStatusBounced), EngagementRank(EmailStatusOpened))
	require.Less(t, EngagementRank(EmailStatusOpened), EngagementRank(EmailStatusClicked))

	require.Equal(t, -1, EngagementRank("mystery"))
}
