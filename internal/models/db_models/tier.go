package db_models

import "tweettocourse/pkg/utils"

type SubscriptionTier string

const (
	TierFree     SubscriptionTier = "free"
	TierPro      SubscriptionTier = "pro"
	TierLifetime SubscriptionTier = "lifetime"
)

// UnlimitedGenerations marks a tier with no monthly generation cap.
const UnlimitedGenerations = -1

// Feature names gated per tier.
const (
	FeaturePDFExport      = "pdf_export"
	FeatureNotionExport   = "notion_export"
	FeatureWatermarkFree  = "watermark_free"
	FeatureCustomBranding = "custom_branding"
)

type TierPolicy struct {
	MonthlyGenerationLimit int
	PDFExport              bool
	NotionExport           bool
	WatermarkFree          bool
	CustomBranding         bool
}

// TierPolicies is process-wide static configuration, read-only after start.
// Pro and lifetime are feature-equivalent; they differ only in billing
// lifecycle, which lives on the Subscription row.
var TierPolicies = map[SubscriptionTier]TierPolicy{
	TierFree: {
		MonthlyGenerationLimit: 1,
		PDFExport:              true,
	},
	TierPro: {
		MonthlyGenerationLimit: UnlimitedGenerations,
		PDFExport:              true,
		NotionExport:           true,
		WatermarkFree:          true,
		CustomBranding:         true,
	},
	TierLifetime: {
		MonthlyGenerationLimit: UnlimitedGenerations,
		PDFExport:              true,
		NotionExport:           true,
		WatermarkFree:          true,
		CustomBranding:         true,
	},
}

// ParseTier validates a request-supplied tier string against the closed
// enumeration. Anything else is ErrInvalidTier.
func ParseTier(s string) (SubscriptionTier, error) {
	tier := SubscriptionTier(s)
	if _, ok := TierPolicies[tier]; !ok {
		return "", utils.ErrInvalidTier
	}
	return tier, nil
}

// HasFeature reports whether the named feature is enabled on the policy.
// Unknown names report false; the service layer rejects them earlier.
func (p TierPolicy) HasFeature(name string) bool {
	switch name {
	case FeaturePDFExport:
		return p.PDFExport
	case FeatureNotionExport:
		return p.NotionExport
	case FeatureWatermarkFree:
		return p.WatermarkFree
	case FeatureCustomBranding:
		return p.CustomBranding
	default:
		return false
	}
}

// Unlimited reports whether the policy has no monthly generation cap.
func (p TierPolicy) Unlimited() bool {
	return p.MonthlyGenerationLimit == UnlimitedGenerations
}

// KnownFeature reports membership in the closed feature name set.
func KnownFeature(name string) bool {
	switch name {
	case FeaturePDFExport, FeatureNotionExport, FeatureWatermarkFree, FeatureCustomBranding:
		return true
	}
	return false
}
