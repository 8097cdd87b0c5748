package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"organizer-api/internal/llm"
	"organizer-api/internal/logging"
	"organizer-api/internal/models"
)

// DebugInfo is returned next to the plan when debug mode is on
type DebugInfo struct {
	SystemPrompt string     `json:"systemPrompt"`
	UserPrompt   string     `json:"userPrompt"`
	RawResponse  string     `json:"rawResponse"`
	Model        string     `json:"model"`
	Usage        *llm.Usage `json:"usage"`
	ItemCount    int        `json:"itemCount"`
}

type AnalyzeResult struct {
	Plan  models.Plan
	Debug *DebugInfo
}

// PlanService asks the model for a categorization plan
type PlanService struct {
	gate    *llm.Gate
	timeout time.Duration
	newLLM  func(ctx context.Context, opts llm.Options) (llm.Categorizer, error)
}

// NewPlanService creates a plan service. gate may be nil.
func NewPlanService(gate *llm.Gate, timeout time.Duration) *PlanService {
	return &PlanService{gate: gate, timeout: timeout, newLLM: llm.New}
}

// BuildPlan turns a folder listing into a plan. The API key is checked
// before anything else, so a missing key fails even for an empty listing.
func (s *PlanService) BuildPlan(ctx context.Context, items []models.DirectoryEntry, settings models.Settings, history []models.MoveRecord) (*AnalyzeResult, error) {
	if settings.APIKey == "" {
		return nil, fmt.Errorf("%w: API key is missing in settings", ErrConfig)
	}
	if len(items) == 0 {
		return &AnalyzeResult{}, nil
	}

	if len(items) > maxPromptItems {
		items = items[:maxPromptItems]
	}

	opts := llm.OptionsFromSettings(settings, s.timeout)
	client, err := s.newLLM(ctx, opts)
	if err != nil {
		if errors.Is(err, llm.ErrMissingAPIKey) || errors.Is(err, llm.ErrMissingBaseURL) || errors.Is(err, llm.ErrUnknownProvider) {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if s.gate != nil {
		client = s.gate.Wrap(client, settings.Provider)
	}

	userPrompt := buildUserPrompt(items, history)
	resp, err := client.Complete(ctx, llm.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  llm.DefaultTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	logging.Logger().Debug().
		Str("client", client.Name()).
		Int("items", len(items)).
		Int("response_bytes", len(resp.Content)).
		Msg("categorization received")

	plan, err := NormalizeResponse(resp.Content)
	if err != nil {
		return nil, err
	}
	if plan.TotalItems() == 0 {
		plan = models.Plan{}
	}

	result := &AnalyzeResult{Plan: plan}
	if settings.DebugMode {
		model := resp.Model
		if model == "" {
			model = opts.ResolvedModel()
		}
		result.Debug = &DebugInfo{
			SystemPrompt: systemPrompt,
			UserPrompt:   userPrompt,
			RawResponse:  resp.Content,
			Model:        model,
			Usage:        resp.Usage,
			ItemCount:    len(items),
		}
	}
	return result, nil
}

// StripCodeFence removes a surrounding markdown code fence, with or
// without a language tag.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop the language tag on the opening line
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// NormalizeResponse converts a model reply into the canonical plan. It
// accepts "items" or the older "files" list, and each entry may be a bare
// file name or a {name, type} object. Category order follows the reply.
func NormalizeResponse(raw string) (models.Plan, error) {
	text := StripCodeFence(raw)
	fail := func(err error) (models.Plan, error) {
		return models.Plan{}, &ParseError{Raw: raw, Err: err}
	}

	dec := json.NewDecoder(strings.NewReader(text))
	tok, err := dec.Token()
	if err != nil {
		return fail(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fail(errors.New("response is not a JSON object"))
	}

	var plan models.Plan
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fail(err)
		}
		name, _ := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fail(err)
		}
		cat, err := models.DecodeCategory(name, value)
		if err != nil {
			return fail(err)
		}
		plan.Set(cat)
	}
	if _, err := dec.Token(); err != nil {
		return fail(err)
	}
	if dec.More() {
		return fail(errors.New("trailing data after plan"))
	}

	return plan, nil
}
