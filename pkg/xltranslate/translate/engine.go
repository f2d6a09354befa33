// Package translate implements deduplicated, batched translation of
// workbook text through a completion provider, with a run-scoped cache and
// token cost accounting.
package translate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/address"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/models"
)

// Defaults applied to zero Config fields.
const (
	DefaultBatchSize = 30
	DefaultTimeout   = 30 * time.Second
)

// Config configures an Engine.
type Config struct {
	// BatchSize is the maximum number of strings per provider call.
	BatchSize int
	// Timeout bounds each provider call.
	Timeout time.Duration
	// Pricing converts token usage into cost.
	Pricing Pricing
	// SystemPrompt is the full system instruction. If empty, it is built
	// with SystemPrompt for the default language pair.
	SystemPrompt string
	// Logger receives debug and warning records. Nil discards them.
	Logger *slog.Logger
	// OnBatch is called after every successful batch.
	OnBatch func(BatchReport)
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize: DefaultBatchSize,
		Timeout:   DefaultTimeout,
		Pricing:   DefaultPricing(),
	}
}

func (c Config) validate() error {
	if c.BatchSize < 0 {
		return fmt.Errorf("%w: batch size %d", ErrInvalidConfig, c.BatchSize)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout %s", ErrInvalidConfig, c.Timeout)
	}
	if c.Pricing.InputPerMillion < 0 || c.Pricing.OutputPerMillion < 0 {
		return fmt.Errorf("%w: negative price", ErrInvalidConfig)
	}
	return nil
}

func (c Config) effectiveBatchSize() int {
	if c.BatchSize > 0 {
		return c.BatchSize
	}
	return DefaultBatchSize
}

func (c Config) effectiveTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c Config) effectiveSystemPrompt() string {
	if c.SystemPrompt != "" {
		return c.SystemPrompt
	}
	return SystemPrompt(DefaultSourceLanguage, DefaultTargetLanguage, "")
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Engine resolves translatable units to translated text. It owns the cache
// and the usage ledger for its lifetime, so each distinct string is sent to
// the provider at most once per engine.
//
// An Engine is not safe for concurrent use: calls must not overlap. Use one
// engine per document when translating documents concurrently.
type Engine struct {
	cache      *Cache
	ledger     *Ledger
	dispatcher *Dispatcher
}

// New creates an engine translating through p.
func New(p Provider, cfg Config) (*Engine, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil provider", ErrInvalidConfig)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cache := NewCache()
	ledger := NewLedger(cfg.Pricing)
	return &Engine{
		cache:      cache,
		ledger:     ledger,
		dispatcher: NewDispatcher(p, cache, ledger, cfg),
	}, nil
}

// Ensure translates every text not yet cached.
func (e *Engine) Ensure(ctx context.Context, texts []string) error {
	return e.dispatcher.DispatchMissing(ctx, texts)
}

// Resolve returns the translated text of every unit, keyed by address.
// Units whose text could not be translated map to their source text. On
// error no result is returned; translations cached before the error remain
// available to later calls.
func (e *Engine) Resolve(ctx context.Context, units []models.Unit) (map[address.Address]string, error) {
	if err := e.Ensure(ctx, models.Texts(units)); err != nil {
		return nil, err
	}
	result := make(map[address.Address]string, len(units))
	for _, u := range units {
		result[u.Address] = e.Lookup(u.Text)
	}
	return result, nil
}

// Translate returns a map from each distinct non-empty text to its
// translation, falling back to the text itself.
func (e *Engine) Translate(ctx context.Context, texts []string) (map[string]string, error) {
	if err := e.Ensure(ctx, texts); err != nil {
		return nil, err
	}
	result := make(map[string]string, len(texts))
	for _, t := range texts {
		if t != "" {
			result[t] = e.Lookup(t)
		}
	}
	return result, nil
}

// Lookup returns the cached translation of text, or text itself.
func (e *Engine) Lookup(text string) string {
	if translated, ok := e.cache.Lookup(text); ok {
		return translated
	}
	return text
}

// Cached returns the number of distinct translated strings.
func (e *Engine) Cached() int {
	return e.cache.Len()
}

// Usage returns the tokens consumed so far.
func (e *Engine) Usage() Usage {
	return e.ledger.Usage()
}

// Cost returns the cost of the tokens consumed so far.
func (e *Engine) Cost() float64 {
	return e.ledger.Cost()
}
