package model

import (
	"maps"
	"sync"
)

// Usage tracks token usage for a model family.
type Usage struct {
	InputTokens  int
	OutputTokens int
	Requests     int
}

// Add adds the given usage to this usage.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.Requests += other.Requests
}

// TotalTokens returns the total tokens used.
func (u *Usage) TotalTokens() int {
	return u.InputTokens + u.OutputTokens
}

// Pricing holds per-million-token list prices in USD.
type Pricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// Cost prices the given usage.
func (p Pricing) Cost(u Usage) float64 {
	return float64(u.InputTokens)/1_000_000*p.InputPerMillion +
		float64(u.OutputTokens)/1_000_000*p.OutputPerMillion
}

// Prices are list prices per family. Local families cost nothing and are
// absent.
var Prices = map[Family]Pricing{
	FamilyGPT4o:       {InputPerMillion: 2.5, OutputPerMillion: 10.0},
	FamilyGPT4oMini:   {InputPerMillion: 0.15, OutputPerMillion: 0.6},
	FamilyGPT4Turbo:   {InputPerMillion: 10.0, OutputPerMillion: 30.0},
	FamilyGPT4:        {InputPerMillion: 30.0, OutputPerMillion: 60.0},
	FamilyGPT35:       {InputPerMillion: 0.5, OutputPerMillion: 1.5},
	FamilyOpus:        {InputPerMillion: 15.0, OutputPerMillion: 75.0},
	FamilySonnet:      {InputPerMillion: 3.0, OutputPerMillion: 15.0},
	FamilyHaiku:       {InputPerMillion: 0.8, OutputPerMillion: 4.0},
	FamilyGeminiPro:   {InputPerMillion: 1.25, OutputPerMillion: 10.0},
	FamilyGeminiFlash: {InputPerMillion: 0.3, OutputPerMillion: 2.5},
}

// CostTracker tracks token usage and estimated costs across model families.
type CostTracker struct {
	mu     sync.RWMutex
	totals map[Family]Usage
}

// NewCostTracker creates a new cost tracker.
func NewCostTracker() *CostTracker {
	return &CostTracker{
		totals: make(map[Family]Usage),
	}
}

// Record adds one request's usage under the family of the named model.
func (t *CostTracker) Record(model string, input, output int) {
	t.RecordUsage(model, Usage{InputTokens: input, OutputTokens: output, Requests: 1})
}

// RecordUsage adds usage under the family of the named model.
func (t *CostTracker) RecordUsage(model string, usage Usage) {
	f := FamilyOf(model)

	t.mu.Lock()
	defer t.mu.Unlock()

	u := t.totals[f]
	u.Add(usage)
	t.totals[f] = u
}

// Usage returns the usage recorded for the family of the named model.
func (t *CostTracker) Usage(model string) Usage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totals[FamilyOf(model)]
}

// Summary returns a copy of all usage totals.
func (t *CostTracker) Summary() map[Family]Usage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.totals)
}

// TotalUsage returns aggregated usage across all families.
func (t *CostTracker) TotalUsage() Usage {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var total Usage
	for _, u := range t.totals {
		total.Add(u)
	}
	return total
}

// EstimatedCost sums the priced families. Unpriced families add nothing.
func (t *CostTracker) EstimatedCost() float64 {
	var total float64
	for _, c := range t.EstimatedCostByFamily() {
		total += c
	}
	return total
}

// EstimatedCostByFamily returns the estimated cost of each priced family.
func (t *CostTracker) EstimatedCostByFamily() map[Family]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[Family]float64, len(t.totals))
	for f, usage := range t.totals {
		if p, ok := Prices[f]; ok {
			result[f] = p.Cost(usage)
		}
	}
	return result
}

// Reset clears all tracked usage.
func (t *CostTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totals = make(map[Family]Usage)
}
