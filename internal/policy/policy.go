package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Rule denies a dispatch when its CEL condition evaluates to true.
type Rule struct {
	Condition string `json:"condition"`
	Reason    string `json:"reason,omitempty"`
}

// Decision is the outcome of evaluating a policy against a dispatch.
type Decision struct {
	Allowed bool
	Reason  string
}

// Policy is an ordered set of deny rules evaluated before a dispatch
// decision is attempted. An empty policy allows everything; the first rule
// whose condition holds denies the dispatch. Policies advise the worker
// only and never influence the routing algorithm itself.
type Policy struct {
	rules     []Rule
	evaluator *Evaluator
	logger    *zap.Logger
}

// New creates a policy from the given rules, validating every condition up
// front.
func New(rules []Rule, logger *zap.Logger) (*Policy, error) {
	evaluator := NewEvaluator()
	for i, rule := range rules {
		if rule.Condition == "" {
			return nil, fmt.Errorf("rule %d: condition is required", i)
		}
		if err := evaluator.ValidateExpression(rule.Condition); err != nil {
			return nil, fmt.Errorf("rule %d: invalid condition: %w", i, err)
		}
	}

	return &Policy{
		rules:     rules,
		evaluator: evaluator,
		logger:    logger,
	}, nil
}

// Parse creates a policy from a JSON array of rules, the form carried in
// configuration.
func Parse(rulesJSON string, logger *zap.Logger) (*Policy, error) {
	var rules []Rule
	if err := json.Unmarshal([]byte(rulesJSON), &rules); err != nil {
		return nil, fmt.Errorf("failed to unmarshal policy rules: %w", err)
	}
	return New(rules, logger)
}

// Decide evaluates the rules in order for a message addressed to
// destination passing through the router identified by routerAddress under
// rootAddress. Rules that fail to evaluate or do not yield a boolean are
// skipped.
func (p *Policy) Decide(ctx context.Context, destination, routerAddress, rootAddress string) Decision {
	if len(p.rules) == 0 {
		return Decision{Allowed: true}
	}

	tokens := strings.Split(destination, ".")
	vars := map[string]interface{}{
		"destination": map[string]interface{}{
			"address": destination,
			"tokens":  tokens,
			"leaf":    tokens[len(tokens)-1],
		},
		"router": map[string]interface{}{
			"address": routerAddress,
			"root":    rootAddress,
		},
	}

	for i, rule := range p.rules {
		result, err := p.evaluator.Evaluate(ctx, rule.Condition, vars)
		if err != nil {
			p.logger.Warn("policy rule evaluation error",
				zap.Int("rule_index", i),
				zap.String("condition", rule.Condition),
				zap.Error(err),
			)
			continue
		}

		matched, ok := result.(bool)
		if !ok {
			p.logger.Warn("policy rule condition did not return boolean",
				zap.Int("rule_index", i),
				zap.String("condition", rule.Condition),
				zap.Any("result", result),
			)
			continue
		}

		if matched {
			reason := rule.Reason
			if reason == "" {
				reason = fmt.Sprintf("denied by rule %d: %s", i, rule.Condition)
			}
			p.logger.Info("dispatch denied by policy",
				zap.Int("rule_index", i),
				zap.String("destination", destination),
				zap.String("reason", reason),
			)
			return Decision{Allowed: false, Reason: reason}
		}
	}

	return Decision{Allowed: true}
}
