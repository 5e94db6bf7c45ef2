package naming

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aymerick/raymond"

	"github.com/itechkenya/address-router/internal/router"
)

// DefaultTemplate reproduces the built-in naming convention: every dot in
// the address replaced with an underscore.
const DefaultTemplate = "{{underscore address}}"

// Engine builds channel namers from Handlebars templates.
type Engine struct {
	cache map[string]*raymond.Template
	mu    sync.RWMutex
}

var registerHelpersOnce sync.Once

// NewEngine creates a new naming engine.
func NewEngine() *Engine {
	registerHelpersOnce.Do(registerHelpers)

	return &Engine{
		cache: make(map[string]*raymond.Template),
	}
}

// Namer compiles templateStr and returns a router.NamerFunc that renders it
// for each address. The template sees only the address and values derived
// from it, so the resulting namer is deterministic. Rendering a compiled
// template cannot fail for the data supplied here, which keeps the namer
// signature a plain string transform.
func (e *Engine) Namer(templateStr string) (router.NamerFunc, error) {
	tmpl, err := e.getTemplate(templateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to compile channel template: %w", err)
	}

	return func(address string) string {
		tokens := strings.Split(address, ".")
		result, err := tmpl.Exec(map[string]interface{}{
			"address":     address,
			"underscored": router.ChannelName(address),
			"tokens":      tokens,
			"leaf":        tokens[len(tokens)-1],
		})
		if err != nil {
			// Compiled templates over plain strings do not fail at
			// exec time; fall back to the built-in convention.
			return router.ChannelName(address)
		}
		return strings.TrimSpace(result)
	}, nil
}

// getTemplate gets a compiled template from cache or compiles it
func (e *Engine) getTemplate(templateStr string) (*raymond.Template, error) {
	// Check cache first (read lock)
	e.mu.RLock()
	if tmpl, ok := e.cache[templateStr]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	// Compile the template (write lock)
	e.mu.Lock()
	defer e.mu.Unlock()

	// Check again in case another goroutine compiled it
	if tmpl, ok := e.cache[templateStr]; ok {
		return tmpl, nil
	}

	tmpl, err := raymond.Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	e.cache[templateStr] = tmpl

	return tmpl, nil
}

// ValidateTemplate validates a template without compiling a namer from it.
func (e *Engine) ValidateTemplate(templateStr string) error {
	_, err := raymond.Parse(templateStr)
	return err
}

// registerHelpers registers the Handlebars helpers available to channel
// templates. Raymond helpers are global, hence the package-level once.
func registerHelpers() {
	// underscore helper - the built-in dot-to-underscore convention
	raymond.RegisterHelper("underscore", func(str string) string {
		return strings.ReplaceAll(str, ".", "_")
	})

	// uppercase helper
	raymond.RegisterHelper("uppercase", func(str string) string {
		return strings.ToUpper(str)
	})

	// lowercase helper
	raymond.RegisterHelper("lowercase", func(str string) string {
		return strings.ToLower(str)
	})

	// join helper - join tokens with separator
	raymond.RegisterHelper("join", func(arr []string, sep string) string {
		return strings.Join(arr, sep)
	})
}
