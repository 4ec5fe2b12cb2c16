package engine

import "job-alert-bot/internal/models"

// merge unions listing batches by uid, keeping first-seen order. A later
// duplicate replaces the earlier value in place. Listings without a URL are
// dropped.
func merge(batches [][]models.Listing) []models.Listing {
	index := make(map[string]int)
	var merged []models.Listing

	for _, batch := range batches {
		for _, l := range batch {
			if !l.Deliverable() {
				continue
			}
			if i, ok := index[l.UID]; ok {
				merged[i] = l
				continue
			}
			index[l.UID] = len(merged)
			merged = append(merged, l)
		}
	}

	return merged
}

func filterByKeywords(listings []models.Listing, prefs models.Preferences) []models.Listing {
	var kept []models.Listing
	for _, l := range listings {
		if prefs.Matches(l) {
			kept = append(kept, l)
		}
	}
	return kept
}
