package translate

// Default prices in USD per million tokens.
const (
	DefaultInputPrice  = 1.75
	DefaultOutputPrice = 14.00
)

// Usage holds consumed token counts.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
}

// TotalTokens returns the sum of prompt and completion tokens.
func (u Usage) TotalTokens() int64 {
	return u.PromptTokens + u.CompletionTokens
}

// Pricing converts token counts into money.
type Pricing struct {
	// InputPerMillion is the price of one million prompt tokens.
	InputPerMillion float64 `json:"input_per_million" toml:"input_per_million"`
	// OutputPerMillion is the price of one million completion tokens.
	OutputPerMillion float64 `json:"output_per_million" toml:"output_per_million"`
}

// DefaultPricing returns the default per-million token prices.
func DefaultPricing() Pricing {
	return Pricing{
		InputPerMillion:  DefaultInputPrice,
		OutputPerMillion: DefaultOutputPrice,
	}
}

// Cost returns the price of u.
func (p Pricing) Cost(u Usage) float64 {
	cost := float64(u.PromptTokens) * p.InputPerMillion / 1_000_000
	cost += float64(u.CompletionTokens) * p.OutputPerMillion / 1_000_000
	return cost
}

// Ledger accumulates token usage across all batches of a run.
type Ledger struct {
	usage   Usage
	pricing Pricing
}

// NewLedger creates an empty ledger priced with p.
func NewLedger(p Pricing) *Ledger {
	return &Ledger{pricing: p}
}

// Add records consumed tokens. Negative counts are ignored so the totals
// never decrease.
func (l *Ledger) Add(promptTokens, completionTokens int64) {
	if promptTokens > 0 {
		l.usage.PromptTokens += promptTokens
	}
	if completionTokens > 0 {
		l.usage.CompletionTokens += completionTokens
	}
}

// Usage returns the accumulated token counts.
func (l *Ledger) Usage() Usage {
	return l.usage
}

// Cost returns the total cost of the accumulated usage.
func (l *Ledger) Cost() float64 {
	return l.pricing.Cost(l.usage)
}
