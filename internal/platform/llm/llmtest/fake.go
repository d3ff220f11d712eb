// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Fake answers GenerateJSON with the function registered for the schema name and counts calls.
type Fake struct {
	mu      sync.Mutex
	json    map[string]func(system, user string) (map[string]any, error)
	stream  []string
	calls   map[string]int
	prompts map[string][]string
}

func New() *Fake {
	return &Fake{
		json:    map[string]func(string, string) (map[string]any, error){},
		calls:   map[string]int{},
		prompts: map[string][]string{},
	}
}

func (f *Fake) OnJSON(schemaName string, fn func(system, user string) (map[string]any, error)) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.json[schemaName] = fn
	return f
}

// OnStream sets the chunks StreamText emits.
func (f *Fake) OnStream(chunks ...string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stream = chunks
	return f
}

func (f *Fake) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	fn := f.json[schemaName]
	f.calls[schemaName]++
	f.prompts[schemaName] = append(f.prompts[schemaName], user)
	f.mu.Unlock()
	if fn == nil {
		return nil, fmt.Errorf("llmtest: no response scripted for %s", schemaName)
	}
	return fn(system, user)
}

func (f *Fake) StreamText(ctx context.Context, system string, user string, onDelta func(delta string)) (string, error) {
	f.mu.Lock()
	chunks := append([]string(nil), f.stream...)
	f.calls["stream"]++
	f.mu.Unlock()
	var full strings.Builder
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return full.String(), err
		}
		full.WriteString(c)
		if onDelta != nil {
			onDelta(c)
		}
	}
	return full.String(), nil
}

func (f *Fake) Model() string { return "fake-model" }

// Calls reports how many times a schema (or "stream") was requested.
func (f *Fake) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

// LastPrompt is the most recent user prompt sent for a schema.
func (f *Fake) LastPrompt(schemaName string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.prompts[schemaName]
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Static returns a responder that always yields obj.
func Static(obj map[string]any) func(string, string) (map[string]any, error) {
	return func(string, string) (map[string]any, error) { return obj, nil }
}
