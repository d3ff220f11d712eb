package prompts

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

// Spec declares one prompt: its templates, the JSON schema the model must satisfy and input validators.
// Streaming prompts leave Schema nil.
type Spec struct {
	Name       PromptName
	Version    int
	SchemaName string
	Schema     func() map[string]any
	System     string
	User       string
	Validators []Validator
}

// Prompt is a rendered Spec ready for llm.Client.
type Prompt struct {
	Name       PromptName
	Version    int
	System     string
	User       string
	SchemaName string
	Schema     map[string]any
}

type compiled struct {
	spec   Spec
	system *template.Template
	user   *template.Template
}

var (
	mu       sync.RWMutex
	registry = map[PromptName]*compiled{}
	initOnce sync.Once
)

// RegisterSpec compiles and stores s. Registering a name twice replaces the earlier spec.
func RegisterSpec(s Spec) {
	c := &compiled{
		spec:   s,
		system: template.Must(template.New(string(s.Name) + ".system").Option("missingkey=zero").Parse(strings.TrimSpace(s.System))),
		user:   template.Must(template.New(string(s.Name) + ".user").Option("missingkey=zero").Parse(strings.TrimSpace(s.User))),
	}
	mu.Lock()
	registry[s.Name] = c
	mu.Unlock()
}

// Build validates in and renders the named prompt.
func Build(name PromptName, in Input) (Prompt, error) {
	initOnce.Do(RegisterAll)
	mu.RLock()
	c := registry[name]
	mu.RUnlock()
	if c == nil {
		return Prompt{}, fmt.Errorf("prompt %q not registered", name)
	}
	for _, v := range c.spec.Validators {
		if err := v(in); err != nil {
			return Prompt{}, fmt.Errorf("prompt %s: %w", name, err)
		}
	}
	var sys, usr bytes.Buffer
	if err := c.system.Execute(&sys, in); err != nil {
		return Prompt{}, fmt.Errorf("prompt %s system: %w", name, err)
	}
	if err := c.user.Execute(&usr, in); err != nil {
		return Prompt{}, fmt.Errorf("prompt %s user: %w", name, err)
	}
	p := Prompt{
		Name:       name,
		Version:    c.spec.Version,
		System:     sys.String(),
		User:       usr.String(),
		SchemaName: c.spec.SchemaName,
	}
	if c.spec.Schema != nil {
		p.Schema = c.spec.Schema()
	}
	return p, nil
}
