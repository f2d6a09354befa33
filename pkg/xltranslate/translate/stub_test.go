package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
)

// stubProvider translates payloads by wrapping every value, counting calls.
type stubProvider struct {
	mu       sync.Mutex
	calls    int
	payloads []string
	usage    *Usage
	// reply overrides the generated reply for the given 0-based call.
	reply map[int]string
	// fail makes the given 0-based call return an error.
	fail map[int]error
}

func (p *stubProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	p.mu.Lock()
	call := p.calls
	p.calls++
	p.payloads = append(p.payloads, req.Payload)
	p.mu.Unlock()

	if err := p.fail[call]; err != nil {
		return nil, err
	}
	if content, ok := p.reply[call]; ok {
		return &Response{Content: content, Usage: p.usage}, nil
	}

	var batch map[string]string
	if err := json.Unmarshal([]byte(req.Payload), &batch); err != nil {
		return nil, fmt.Errorf("stub: bad payload: %w", err)
	}
	out := make(map[string]string, len(batch))
	for k, v := range batch {
		out[k] = translated(v)
	}
	data, _ := json.Marshal(out)
	return &Response{Content: string(data), Usage: p.usage}, nil
}

// batchSizes returns the number of entries of every payload sent.
func (p *stubProvider) batchSizes(t *testing.T) []int {
	t.Helper()
	var sizes []int
	for _, payload := range p.payloads {
		var batch map[string]string
		if err := json.Unmarshal([]byte(payload), &batch); err != nil {
			t.Fatalf("bad payload %q: %v", payload, err)
		}
		sizes = append(sizes, len(batch))
	}
	return sizes
}

func translated(s string) string {
	return "zh(" + s + ")"
}

// forbidProvider fails the test when called.
func forbidProvider(t *testing.T) Provider {
	return ProviderFunc(func(ctx context.Context, req Request) (*Response, error) {
		t.Errorf("provider must not be called, got payload %s", req.Payload)
		return nil, fmt.Errorf("unexpected call")
	})
}
