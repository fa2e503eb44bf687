package auth

import "time"

// Upstox invalidates every access token at 03:30 IST, regardless of when it
// was issued. Expiry is therefore the next wall-clock occurrence of the
// cutoff, not issuedAt plus a duration.
const (
	cutoffHour   = 3
	cutoffMinute = 30
)

var marketLocation = loadMarketLocation()

func loadMarketLocation() *time.Location {
	if loc, err := time.LoadLocation("Asia/Kolkata"); err == nil {
		return loc
	}
	// Stripped environments may lack tzdata; IST has no DST so a fixed
	// offset is equivalent.
	return time.FixedZone("IST", 5*3600+30*60)
}

// NextDailyCutoff returns the first occurrence of the daily cutoff strictly
// after the given issue instant. A token issued exactly at the cutoff belongs
// to the next window.
func NextDailyCutoff(issued time.Time) time.Time {
	t := issued.In(marketLocation)
	cutoff := time.Date(t.Year(), t.Month(), t.Day(), cutoffHour, cutoffMinute, 0, 0, marketLocation)
	if !t.Before(cutoff) {
		cutoff = cutoff.AddDate(0, 0, 1)
	}
	return cutoff
}
