package users

// PickTier resolves the tier with the greatest MinSpending not exceeding
// spent. tiers must be sorted ascending by MinSpending. ok=false when
// nothing qualifies; callers then keep whatever tier the user already has.
func PickTier(tiers []Tier, spent int64) (Tier, bool) {
	var best Tier
	found := false
	for _, t := range tiers {
		if t.MinSpending <= spent {
			best = t
			found = true
		}
	}
	return best, found
}
