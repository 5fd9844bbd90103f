package domain

const (
	// MinScore and MaxScore bound a single score value, inclusive.
	MinScore = 0.0
	MaxScore = 5.0
)

// Score represents a single user's score for a movie. At most one exists per
// (MovieID, UserID) pair.
type Score struct {
	MovieID int64
	UserID  int64
	Value   float64
}

// ValidScore reports whether v lies in [MinScore, MaxScore].
func ValidScore(v float64) bool {
	return v >= MinScore && v <= MaxScore
}

// Aggregate returns the arithmetic mean and number of the given score values.
// Zero values are counted; an empty slice yields (0, 0).
func Aggregate(values []float64) (float64, int) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), len(values)
}
