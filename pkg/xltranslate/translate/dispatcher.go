package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// mergeCheckInterval is the number of merged response entries between two
// cancellation checks.
const mergeCheckInterval = 16

var markdownCodeBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// BatchReport describes one completed batch.
type BatchReport struct {
	// Batch is the 0-based batch number within the dispatch call.
	Batch int
	// Batches is the number of batches of the dispatch call.
	Batches int
	// Size is the number of strings sent.
	Size int
	// Translated is the number of strings recorded into the cache.
	Translated int
	// Usage is the token usage reported for the batch, if any.
	Usage *Usage
	// Duration is the round trip time of the provider call.
	Duration time.Duration
}

// Dispatcher sends untranslated strings to the provider in bounded batches
// and merges the replies into the cache. Batches are sent one at a time.
type Dispatcher struct {
	provider  Provider
	cache     *Cache
	ledger    *Ledger
	system    string
	batchSize int
	timeout   time.Duration
	logger    *slog.Logger
	onBatch   func(BatchReport)
}

// NewDispatcher creates a dispatcher writing into cache and ledger.
func NewDispatcher(p Provider, cache *Cache, ledger *Ledger, cfg Config) *Dispatcher {
	return &Dispatcher{
		provider:  p,
		cache:     cache,
		ledger:    ledger,
		system:    cfg.effectiveSystemPrompt(),
		batchSize: cfg.effectiveBatchSize(),
		timeout:   cfg.effectiveTimeout(),
		logger:    cfg.logger(),
		onBatch:   cfg.OnBatch,
	}
}

// DispatchMissing translates every text not yet cached. It may be called with
// any subset of texts, including already cached or duplicated ones.
//
// The first failing batch aborts the remaining ones and is returned as an
// *APIError. Batches completed before the failure stay cached. Cancellation
// of ctx is reported as ErrCancelled.
func (d *Dispatcher) DispatchMissing(ctx context.Context, texts []string) error {
	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}
	missing := d.cache.Missing(texts)
	if len(missing) == 0 {
		return nil
	}

	chunks := splitStrings(missing, d.batchSize)
	d.logger.Debug("dispatching translations", "strings", len(missing), "batches", len(chunks))
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return cancelled(err)
		}
		if err := d.dispatchBatch(ctx, i, len(chunks), chunk); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) dispatchBatch(ctx context.Context, index, total int, chunk []string) error {
	keys := make([]string, len(chunk))
	byKey := make(map[string]string, len(chunk))
	for i, text := range chunk {
		keys[i] = batchKey(i)
		byKey[keys[i]] = text
	}

	payload, err := encodeBatch(keys, chunk)
	if err != nil {
		return &APIError{Batch: index, Size: len(chunk), Err: err}
	}

	callCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := d.provider.Complete(callCtx, Request{
		System:  d.system,
		Payload: payload,
		Timeout: d.timeout,
	})
	elapsed := time.Since(start)

	// Tokens reported by the provider were spent even if the reply is
	// rejected below.
	var usage *Usage
	if resp != nil && resp.Usage != nil {
		usage = resp.Usage
		d.ledger.Add(usage.PromptTokens, usage.CompletionTokens)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return cancelled(ctxErr)
	}
	if err != nil {
		d.logger.Warn("translation batch failed", "batch", index+1, "batches", total, "error", err)
		return &APIError{Batch: index, Size: len(chunk), Err: err}
	}
	if resp == nil {
		return &APIError{Batch: index, Size: len(chunk), Err: fmt.Errorf("%w: no response", ErrInvalidResponseShape)}
	}

	values, err := parseResponse(resp.Content)
	if err != nil {
		d.logger.Warn("invalid translation response", "batch", index+1, "batches", total, "error", err)
		return &APIError{Batch: index, Size: len(chunk), Err: err}
	}

	translated := 0
	merged := 0
	for key, value := range values {
		if merged%mergeCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return cancelled(err)
			}
		}
		merged++

		source, ok := byKey[key]
		if !ok {
			continue
		}
		text, ok := value.(string)
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}
		d.cache.Record(source, text)
		translated++
	}

	d.logger.Debug("translation batch done",
		"batch", index+1,
		"batches", total,
		"size", len(chunk),
		"translated", translated,
		"elapsed", elapsed)
	if translated < len(chunk) {
		d.logger.Warn("translation batch incomplete", "batch", index+1, "missing", len(chunk)-translated)
	}

	if d.onBatch != nil {
		d.onBatch(BatchReport{
			Batch:      index,
			Batches:    total,
			Size:       len(chunk),
			Translated: translated,
			Usage:      usage,
			Duration:   elapsed,
		})
	}
	return nil
}

func batchKey(i int) string {
	return "id_" + strconv.Itoa(i)
}

// encodeBatch serializes the batch as a JSON object with keys in order,
// leaving non-ASCII and HTML characters unescaped.
func encodeBatch(keys, texts []string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	quote := func(s string) (string, error) {
		buf.Reset()
		if err := enc.Encode(s); err != nil {
			return "", fmt.Errorf("encoding batch: %w", err)
		}
		return strings.TrimSuffix(buf.String(), "\n"), nil
	}

	var out strings.Builder
	out.WriteByte('{')
	for i, key := range keys {
		k, err := quote(key)
		if err != nil {
			return "", err
		}
		v, err := quote(texts[i])
		if err != nil {
			return "", err
		}
		if i > 0 {
			out.WriteByte(',')
		}
		out.WriteString(k)
		out.WriteByte(':')
		out.WriteString(v)
	}
	out.WriteByte('}')
	return out.String(), nil
}

// parseResponse decodes the reply content into a JSON object.
func parseResponse(content string) (map[string]any, error) {
	content = strings.TrimSpace(content)
	if m := markdownCodeBlock.FindStringSubmatch(content); len(m) > 1 {
		content = m[1]
	}
	if content == "" {
		return nil, fmt.Errorf("%w: empty content", ErrInvalidResponseShape)
	}

	var v any
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return nil, fmt.Errorf("%w: %v (response: %s)", ErrInvalidResponseShape, err, truncate(content, 200))
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidResponseShape, jsonKind(v))
	}
	if len(obj) == 0 {
		return nil, ErrEmptyTranslationResult
	}
	return obj, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func splitStrings(items []string, chunkSize int) [][]string {
	if chunkSize <= 0 {
		chunkSize = len(items)
	}
	var chunks [][]string
	for i := 0; i < len(items); i += chunkSize {
		end := i + chunkSize
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[i:end])
	}
	return chunks
}

// truncate shortens s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
