// File: internal/oracle/oracle.go

// Package oracle asks an LLM which on-screen option a simulated viewer would
// pick next. The oracle is advisory only: every failure mode collapses to
// Decision{OK: false} and the caller falls back to a uniform random draw, so
// the simulation never depends on the model being reachable, fast, or sane.
package oracle

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/hogflix/hogsim/internal/config"
)

// Decision is a tagged result. "No decision" is a normal value, not an error:
// the chooser never forces the caller into exception-style control flow.
type Decision struct {
	OK    bool
	Index int
}

// NoDecision is the canonical negative result.
var NoDecision = Decision{}

// Chooser picks one of the labeled options, or declines.
type Chooser interface {
	Choose(ctx context.Context, situation string, options []string) Decision
}

// Disabled is the chooser used when no API key is configured. It never
// attempts a network call.
type Disabled struct{}

func (Disabled) Choose(context.Context, string, []string) Decision { return NoDecision }

// Gemini is a Chooser backed by the Gemini API.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// New builds the configured chooser. A missing API key yields Disabled rather
// than an error; the simulation runs fine on random choices alone.
func New(ctx context.Context, cfg config.OracleConfig, logger *zap.Logger) (Chooser, error) {
	if cfg.APIKey == "" {
		logger.Info("no oracle API key configured, choices will be uniform random")
		return Disabled{}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("oracle: failed to create client: %w", err)
	}

	return &Gemini{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.Named("oracle"),
	}, nil
}

// Choose presents the numbered options and expects a bare index back. Any
// failure (transport, empty reply, unparseable reply, out-of-range index)
// returns NoDecision; they are all handled identically.
func (g *Gemini) Choose(ctx context.Context, situation string, options []string) Decision {
	if len(options) == 0 {
		return NoDecision
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(callCtx, g.model,
		genai.Text(buildPrompt(situation, options)), &genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0.7),
		})
	if err != nil {
		g.logger.Debug("oracle call failed", zap.Error(err))
		return NoDecision
	}

	return ParseReply(resp.Text(), len(options))
}

// buildPrompt constrains the model hard: the reply must be a single integer
// or the literal phrase "no preference".
func buildPrompt(situation string, options []string) string {
	var b strings.Builder
	b.WriteString("You are a casual viewer browsing a video streaming site.\n")
	b.WriteString(situation)
	b.WriteString("\nThese are the options on screen:\n")
	for i, opt := range options {
		fmt.Fprintf(&b, "%d: %s\n", i, opt)
	}
	fmt.Fprintf(&b,
		"Reply with ONLY the number (0-%d) of the option you would click next, "+
			"or the exact words \"no preference\".", len(options)-1)
	return b.String()
}

// ParseReply extracts the chosen index from the model's reply. Exported so
// the parsing contract is testable without a live client.
func ParseReply(reply string, optionCount int) Decision {
	text := strings.ToLower(strings.TrimSpace(reply))
	if text == "" || strings.Contains(text, "no preference") {
		return NoDecision
	}

	if idx, err := strconv.Atoi(text); err == nil {
		if idx < 0 || idx >= optionCount {
			return NoDecision
		}
		return Decision{OK: true, Index: idx}
	}

	// Models occasionally wrap the number in prose or punctuation; take the
	// first integer token.
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if len(fields) == 0 {
		return NoDecision
	}

	idx, err := strconv.Atoi(fields[0])
	if err != nil || idx < 0 || idx >= optionCount {
		return NoDecision
	}
	return Decision{OK: true, Index: idx}
}
