package services

import (
	"context"
	"fmt"
)

// Standing is one address's lifetime fragments in a campaign.
type Standing struct {
	Address   string `json:"address"`
	Fragments int    `json:"fragments"`
}

// Standings ranks every address that earned fragments in the campaign.
func (s *TaskService) Standings(ctx context.Context, campaignID string) ([]Standing, error) {
	standings := []Standing{}
	err := s.Weekly.DB.WithContext(ctx).Raw(`
		SELECT address, SUM(fragments) AS fragments FROM (
			SELECT address, fragments FROM weekly_fragment_claims WHERE campaign_id = ?
			UNION ALL
			SELECT address, fragments FROM visits WHERE campaign_id = ?
			UNION ALL
			SELECT address, fragments FROM daily_swaps WHERE campaign_id = ?
		) earned
		GROUP BY address
		HAVING SUM(fragments) > 0
		ORDER BY fragments DESC, address ASC
	`, campaignID, campaignID, campaignID).Scan(&standings).Error
	if err != nil {
		return nil, fmt.Errorf("compute standings: %w", err)
	}
	return standings, nil
}
