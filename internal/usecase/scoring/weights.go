package scoring

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/lumenpick/internal/domain/run"
)

// Dimension weights of the overall score.
const (
	UseCaseWeight = 0.55
	BudgetWeight  = 0.20
	BatteryWeight = 0.15
	SizeWeight    = 0.10
)

const weightTolerance = 1e-9

// Weights holds the contribution of each dimension to the overall score.
type Weights struct {
	UseCase float64
	Budget  float64
	Battery float64
	Size    float64
}

// DefaultWeights returns the fixed production weights.
func DefaultWeights() Weights {
	return Weights{
		UseCase: UseCaseWeight,
		Budget:  BudgetWeight,
		Battery: BatteryWeight,
		Size:    SizeWeight,
	}
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.UseCase + w.Budget + w.Battery + w.Size
}

// Validate checks that weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"use_case": w.UseCase, "budget": w.Budget, "battery": w.Battery, "size": w.Size,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s is negative: %v", name, v)
		}
	}
	if math.Abs(w.Sum()-1) > weightTolerance {
		return fmt.Errorf("weights must sum to 1, got %v", w.Sum())
	}
	return nil
}

// Aggregate combines dimension scores into the overall score.
func (w Weights) Aggregate(s run.Scores) float64 {
	return clamp100(w.UseCase*s.UseCase + w.Budget*s.Budget + w.Battery*s.Battery + w.Size*s.Size)
}
