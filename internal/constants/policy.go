package constants

// Default policy values. Every one of these can be overridden from the policy
// file; call sites read them through config.Policy, never directly.
const (
	// Variance classification (minutes). |v| <= tolerance is on schedule,
	// v < -SignificantlyBehind is significantly behind.
	DefaultOnScheduleToleranceMin = 5
	DefaultSignificantlyBehindMin = 30

	// Meal and workday compliance. Legal values differ by union and
	// jurisdiction, so these are placeholders for the configured policy.
	DefaultMinMealMinutes     = 30
	DefaultMealIntervalMin    = 360
	DefaultMaxWorkdayMinutes  = 720
	DefaultSetupOverlapMin    = 15
	DefaultSwapSuggestionSize = 10

	// Scene swap scoring weights; they add up to 100.
	DefaultSwapDurationWeight  = 40.0
	DefaultSwapSetWeight       = 25.0
	DefaultSwapAdjacencyWeight = 20.0
	DefaultSwapIntExtWeight    = 10.0
	DefaultSwapTimeOfDayWeight = 5.0

	// Duration similarity: full credit within the first bound, none past the second.
	DefaultSwapDurationFullMin = 15
	DefaultSwapDurationZeroMin = 60
	// Day adjacency bonus reaches zero past this many days apart.
	DefaultSwapMaxDayDistance = 4
)

func init() {
	total := DefaultSwapDurationWeight + DefaultSwapSetWeight + DefaultSwapAdjacencyWeight +
		DefaultSwapIntExtWeight + DefaultSwapTimeOfDayWeight
	if total != 100 {
		panic("swap scoring weights must sum to 100")
	}
}
