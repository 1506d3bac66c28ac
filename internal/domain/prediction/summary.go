package prediction

import (
	"github.com/rentscope/geointel/internal/domain/stats"
)

// Summary aggregates a batch of predictions.  It is derived purely from the
// predictions themselves and carries no model state.
type Summary struct {
	Count                  int                `json:"count"`
	AveragePrice           float64            `json:"average_price"`
	MedianPrice            float64            `json:"median_price"`
	PriceStdDev            float64            `json:"price_std_dev"`
	AverageConfidence      float64            `json:"average_confidence"`
	ConfidenceDistribution map[string]int     `json:"confidence_distribution"`
	ConfidencePercentiles  map[string]float64 `json:"confidence_percentiles"`
	MinPrice               float64            `json:"min_price"`
	MaxPrice               float64            `json:"max_price"`
}

// Summarize computes the batch summary.  An empty batch yields a Summary of
// zeros with all histogram buckets present, never an error.
func Summarize(predictions []*Prediction) *Summary {
	prices := make([]float64, 0, len(predictions))
	confidences := make([]float64, 0, len(predictions))
	for _, p := range predictions {
		prices = append(prices, p.Price)
		confidences = append(confidences, p.Confidence)
	}

	return &Summary{
		Count:                  len(predictions),
		AveragePrice:           stats.Mean(prices),
		MedianPrice:            stats.Median(prices),
		PriceStdDev:            stats.StdDev(prices),
		AverageConfidence:      stats.Mean(confidences),
		ConfidenceDistribution: stats.ConfidenceDistribution(confidences),
		ConfidencePercentiles:  stats.Percentiles(confidences),
		MinPrice:               stats.Min(prices),
		MaxPrice:               stats.Max(prices),
	}
}
