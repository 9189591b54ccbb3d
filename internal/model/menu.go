package model

// MenuTiers lists the known menu tiers, lowest first.
var MenuTiers = []string{"727", "737", "747", "757", "767", "777"}

// DefaultMenuTier is used when neither the sheet nor the file name names a tier.
func DefaultMenuTier() string {
	return MenuTiers[0]
}

// IsKnownMenuTier reports whether tier is in MenuTiers.
func IsKnownMenuTier(tier string) bool {
	for _, t := range MenuTiers {
		if t == tier {
			return true
		}
	}
	return false
}
