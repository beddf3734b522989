package features

import (
	"fmt"
	"math"
)

// Scaler is a fitted per-column standardization: subtract the column mean,
// divide by the column standard deviation. It is fitted once over the full
// cleaned corpus and then treated as immutable; every vector compared in
// the scaled space must pass through the same fitted instance.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitScaler computes per-column mean and standard deviation over rows.
// Zero-variance columns scale by 1 so constant features pass through
// centered instead of dividing by zero.
func FitScaler(rows [][]float64) (*Scaler, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("fit scaler: no rows")
	}
	dim := len(rows[0])

	mean := make([]float64, dim)
	for _, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("fit scaler: ragged row width %d, want %d", len(row), dim)
		}
		for i, v := range row {
			mean[i] += v
		}
	}
	n := float64(len(rows))
	for i := range mean {
		mean[i] /= n
	}

	std := make([]float64, dim)
	for _, row := range rows {
		for i, v := range row {
			d := v - mean[i]
			std[i] += d * d
		}
	}
	for i := range std {
		std[i] = math.Sqrt(std[i] / n)
		if std[i] == 0 {
			std[i] = 1
		}
	}

	return &Scaler{Mean: mean, Std: std}, nil
}

// Dim returns the column count the scaler was fitted for.
func (s *Scaler) Dim() int { return len(s.Mean) }

// Transform standardizes a single vector into the scaled space.
func (s *Scaler) Transform(v []float64) ([]float64, error) {
	if len(v) != s.Dim() {
		return nil, fmt.Errorf("transform: vector width %d, scaler expects %d", len(v), s.Dim())
	}
	out := make([]float64, len(v))
	for i, value := range v {
		out[i] = (value - s.Mean[i]) / s.Std[i]
	}
	return out, nil
}

// TransformAll standardizes every row.
func (s *Scaler) TransformAll(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = scaled
	}
	return out, nil
}
