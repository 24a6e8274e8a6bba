package geo

import "strings"

// RegionClassifier decides whether a resolved region belongs to the home
// region, which carries the lower mileage rate.
type RegionClassifier interface {
	// Home returns the canonical home region name.
	Home() string

	// IsHome reports whether the region (or locality) is inside the home
	// region.
	IsHome(region string) bool
}

// AllowListClassifier classifies regions against an injected locality
// allow-list. Matching is case-insensitive.
type AllowListClassifier struct {
	home  string
	allow map[string]struct{}
}

// NewAllowListClassifier creates a classifier for the given home region
// and the localities that belong to it.
func NewAllowListClassifier(homeRegion string, localities []string) *AllowListClassifier {
	allow := make(map[string]struct{}, len(localities)+1)
	allow[strings.ToLower(strings.TrimSpace(homeRegion))] = struct{}{}
	for _, l := range localities {
		allow[strings.ToLower(strings.TrimSpace(l))] = struct{}{}
	}
	return &AllowListClassifier{
		home:  homeRegion,
		allow: allow,
	}
}

// Home returns the canonical home region name.
func (c *AllowListClassifier) Home() string {
	return c.home
}

// IsHome reports whether region is on the allow-list. An empty region
// (provider reported none) is never home.
func (c *AllowListClassifier) IsHome(region string) bool {
	if region == "" {
		return false
	}
	_, ok := c.allow[strings.ToLower(strings.TrimSpace(region))]
	return ok
}

// Ensure AllowListClassifier implements RegionClassifier.
var _ RegionClassifier = (*AllowListClassifier)(nil)
