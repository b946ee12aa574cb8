package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-fund/internal/types"
	"github.com/rxtech-lab/argo-fund/internal/utils"
)

// DataGenerator generates NAV series for tests and benchmarks.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how a series is generated.
type GeneratorConfig struct {
	// StartDate is the first calendar day considered.
	StartDate time.Time
	// Count is the number of points to generate
	Count int
	// InitialNav is the starting value
	InitialNav float64
	// Volatility is the daily standard deviation (0.01 = 1%)
	Volatility float64
	// Trend is the drift over the whole series (-0.5 to 0.5 for bearish to bullish)
	Trend float64
	// Weekends keeps Saturdays and Sundays in the series.
	Weekends bool
}

// DefaultConfig returns a year of weekday NAVs starting at 1.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Count:      250,
		InitialNav: 1.0,
		Volatility: 0.01,
		Trend:      0.0,
		Weekends:   false,
	}
}

// Generate creates a series following a geometric Brownian motion.
// Values are rounded to 4 decimals like published fund NAVs.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.SeriesPoint {
	points := make([]types.SeriesPoint, 0, config.Count)
	nav := config.InitialNav
	day := config.StartDate

	for len(points) < config.Count {
		if !config.Weekends && (day.Weekday() == time.Saturday || day.Weekday() == time.Sunday) {
			day = day.AddDate(0, 0, 1)

			continue
		}

		points = append(points, types.SeriesPoint{
			Date:  day.Format(time.DateOnly),
			Value: utils.Round4(nav),
		})

		// Box-Muller transform for a normal draw
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		next := nav * (1 + config.Volatility*z + config.Trend/float64(config.Count))
		if next <= 0 {
			next = nav * 0.99
		}

		nav = next
		day = day.AddDate(0, 0, 1)
	}

	return points
}

// Rows converts points into request rows.
func Rows(points []types.SeriesPoint) []types.RawRow {
	rows := make([]types.RawRow, 0, len(points))
	for _, p := range points {
		rows = append(rows, types.RawRow{"date": p.Date, "val": p.Value})
	}

	return rows
}

// GenerateYear is a convenience function returning a year of weekday NAVs with a fixed seed.
func GenerateYear() []types.SeriesPoint {
	return NewDataGenerator(42).Generate(DefaultConfig())
}
