package service

import "github.com/strivetech/homematch/internal/model"

// HasMinimumSearchCriteria reports whether enough is known to run a listing
// search: a location and a budget ceiling.
func HasMinimumSearchCriteria(prefs model.PropertyPreferences) bool {
	return prefs.Location != nil && *prefs.Location != "" &&
		prefs.MaxPrice != nil && *prefs.MaxPrice > 0
}

// MissingCriticalFields lists which of the two gate fields are still absent,
// location first.
func MissingCriticalFields(prefs model.PropertyPreferences) []string {
	var missing []string
	if prefs.Location == nil || *prefs.Location == "" {
		missing = append(missing, "location")
	}
	if prefs.MaxPrice == nil || *prefs.MaxPrice <= 0 {
		missing = append(missing, "budget")
	}
	return missing
}
