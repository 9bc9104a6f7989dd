// Package plan defines the static plan tiers and their quotas.
package plan

import "strings"

type Tier string

const (
	TierFree    Tier = "free"
	TierStarter Tier = "starter"
	TierPro     Tier = "pro"
)

// Features flags the integrations a tier may use. Sheets delivery is the
// primary integration and is available on every tier.
type Features struct {
	SlackNotifications bool
	EmailNotifications bool
	NotionSync         bool
	FileUploads        bool
	AnalyticsDashboard bool
}

// Limits is the quota table for a tier.
type Limits struct {
	Tier                  Tier
	MaxForms              int
	MaxMonthlySubmissions int64
	MaxFileSizeMB         int64
	MaxFilesPerSubmission int
	Features              Features
}

var limitsByTier = map[Tier]Limits{
	TierFree: {
		Tier:                  TierFree,
		MaxForms:              3,
		MaxMonthlySubmissions: 100,
		MaxFileSizeMB:         5,
		MaxFilesPerSubmission: 3,
		Features: Features{
			FileUploads: true,
		},
	},
	TierStarter: {
		Tier:                  TierStarter,
		MaxForms:              20,
		MaxMonthlySubmissions: 5000,
		MaxFileSizeMB:         25,
		MaxFilesPerSubmission: 10,
		Features: Features{
			SlackNotifications: true,
			EmailNotifications: true,
			FileUploads:        true,
			AnalyticsDashboard: true,
		},
	},
	TierPro: {
		Tier:                  TierPro,
		MaxForms:              100,
		MaxMonthlySubmissions: 50000,
		MaxFileSizeMB:         100,
		MaxFilesPerSubmission: 25,
		Features: Features{
			SlackNotifications: true,
			EmailNotifications: true,
			NotionSync:         true,
			FileUploads:        true,
			AnalyticsDashboard: true,
		},
	},
}

// LimitsFor resolves the quota table for a tier. Unknown tiers resolve to
// the free tier.
func LimitsFor(tier Tier) Limits {
	if limits, ok := limitsByTier[Tier(strings.ToLower(strings.TrimSpace(string(tier))))]; ok {
		return limits
	}
	return limitsByTier[TierFree]
}

// MaxFileSizeBytes converts the tier's per-file ceiling to bytes.
func (l Limits) MaxFileSizeBytes() int64 {
	return l.MaxFileSizeMB * 1024 * 1024
}
