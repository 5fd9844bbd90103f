package domain

// Movie represents the canonical movie entity in the database/service.
// Scores are not embedded; they reference the movie by MovieID.
type Movie struct {
	ID    int64
	Title string
	Score float64
	Count int
	Image string
}

// ApplyAggregate overwrites the movie's average and count from its score values.
func (m *Movie) ApplyAggregate(values []float64) {
	m.Score, m.Count = Aggregate(values)
}
