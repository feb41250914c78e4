// Package policy gates which MCP tools the agent is allowed to offer
// to the planner.
package policy

import (
	"context"
	"fmt"
	"regexp"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Request contains the context of a tool advertisement to be evaluated.
type Request struct {
	Tool        string
	Server      string
	Description string
}

// Result contains the outcome of a policy evaluation.
type Result struct {
	Effect Effect
	Reason string
}

// Engine evaluates tools against a set of rules.
type Engine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// DefaultEngine is a basic deny-list implementation of Engine.
type DefaultEngine struct {
	DeniedTools map[string]bool
	DeniedRegex []*regexp.Regexp
}

func NewDefaultEngine() *DefaultEngine {
	return &DefaultEngine{
		DeniedTools: make(map[string]bool),
		DeniedRegex: make([]*regexp.Regexp, 0),
	}
}

func (e *DefaultEngine) DenyTool(name string) {
	e.DeniedTools[name] = true
}

// DenyPattern blocks any tool whose name matches the pattern.
func (e *DefaultEngine) DenyPattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e.DeniedRegex = append(e.DeniedRegex, re)
	return nil
}

func (e *DefaultEngine) Evaluate(ctx context.Context, req Request) (Result, error) {
	if e.DeniedTools[req.Tool] {
		return Result{
			Effect: EffectDeny,
			Reason: fmt.Sprintf("Tool '%s' is restricted by system policy", req.Tool),
		}, nil
	}

	for _, re := range e.DeniedRegex {
		if re.MatchString(req.Tool) {
			return Result{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("Tool '%s' matches a denied pattern", req.Tool),
			}, nil
		}
	}

	return Result{Effect: EffectAllow}, nil
}
