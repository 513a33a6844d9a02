package classify

import (
	"time"

	"github.com/marketintel/decisiond/pkg/types"
)

// TradingSessionClassifier classifies a timestamp into a trading session,
// purely as a function of wall-clock time in a configured zone.
type TradingSessionClassifier struct {
	Location *time.Location
}

// NewTradingSessionClassifier builds a classifier for the named IANA zone.
// Falls back to UTC if the zone cannot be loaded (never panics on bad config).
func NewTradingSessionClassifier(zoneName string) TradingSessionClassifier {
	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		loc = time.UTC
	}
	return TradingSessionClassifier{Location: loc}
}

// Classify buckets t into a TradingSession. Weekends are always OFF_HOURS;
// weekdays are bucketed by minute-of-day.
func (c TradingSessionClassifier) Classify(t time.Time) types.TradingSession {
	local := t.In(c.Location)

	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return types.SessionOffHours
	}

	minuteOfDay := local.Hour()*60 + local.Minute()
	openingBurstStart := 9*60 + 15
	middayStart := 10 * 60
	powerHourStart := 15 * 60
	powerHourEnd := 15*60 + 30

	switch {
	case minuteOfDay >= openingBurstStart && minuteOfDay < middayStart:
		return types.SessionOpeningBurst
	case minuteOfDay >= middayStart && minuteOfDay < powerHourStart:
		return types.SessionMiddayConsolidation
	case minuteOfDay >= powerHourStart && minuteOfDay < powerHourEnd:
		return types.SessionPowerHour
	default:
		return types.SessionOffHours
	}
}
