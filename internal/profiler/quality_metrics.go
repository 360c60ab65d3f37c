package profiler

// QualityMetrics summarizes a profiled file for quick triage.
type QualityMetrics struct {
	TotalRows         int
	UnknownPercentage float64
	DistinctRatio     float64
	TruncatedFields   int
}

// CalculateQuality derives file-level quality numbers from the per-field
// profiles. Distinct ratios from truncated fields are lower bounds.
func (fp *FileProfile) CalculateQuality() QualityMetrics {
	metrics := QualityMetrics{
		TotalRows: fp.RowCount,
	}

	totalUnknown := 0
	totalDistinct := 0
	for _, f := range fp.Fields {
		totalUnknown += f.UnknownCount
		totalDistinct += f.DistinctCount
		if f.Truncated {
			metrics.TruncatedFields++
		}
	}

	cells := fp.RowCount * len(fp.Fields)
	if cells > 0 {
		metrics.UnknownPercentage = float64(totalUnknown) / float64(cells)
		metrics.DistinctRatio = float64(totalDistinct) / float64(cells)
	}

	return metrics
}
