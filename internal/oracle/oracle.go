// Package oracle answers crop-advice questions about a farm record using the
// Anthropic Messages API.
package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/aura-cli/internal/model"
	"github.com/sells-group/aura-cli/internal/resilience"
	"github.com/sells-group/aura-cli/pkg/anthropic"
)

var (
	// ErrAdvisorDisabled is returned when no API client is configured.
	ErrAdvisorDisabled = eris.New("oracle: advisor disabled (no anthropic key configured)")
	// ErrAdvisorUnavailable is returned while the upstream breaker is open.
	ErrAdvisorUnavailable = eris.New("oracle: advisor temporarily unavailable")
)

// DefaultQuestion is asked when the caller supplies none.
const DefaultQuestion = "What should I do this week to improve this farm's health?"

const systemPrompt = `You are Krishi Rishi, a practical crop advisor for smallholder farmers in India.
You receive a synthetic satellite summary of one land parcel and a farmer's question.
Answer in at most five short bullet points. Prefer low-cost, locally available
practices. Mention the listed risk factors when they are relevant. Do not invent
measurements that are not in the summary.`

// Advice is the advisor's answer for one farm.
type Advice struct {
	FarmID   string          `json:"farmId"`
	Question string          `json:"question"`
	Answer   string          `json:"answer"`
	Model    string          `json:"model"`
	Usage    anthropic.Usage `json:"-"`
}

// Advisor builds prompts from farm records and sends them to the API.
type Advisor struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	breaker   *resilience.Breaker
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithBreaker guards API calls with b. Use NewBreaker for the usual trip rule.
func WithBreaker(b *resilience.Breaker) Option {
	return func(a *Advisor) {
		a.breaker = b
	}
}

// New returns an Advisor. A nil client yields a disabled advisor whose
// Advise calls fail with ErrAdvisorDisabled.
func New(client anthropic.Client, model string, maxTokens int64, opts ...Option) *Advisor {
	a := &Advisor{client: client, model: model, maxTokens: maxTokens}
	for _, o := range opts {
		o(a)
	}
	return a
}

// NewBreaker returns a breaker that trips on overload, rate limit and
// server errors from the API and on network failures, but not on bad
// requests or auth errors.
func NewBreaker(opts ...resilience.BreakerOption) *resilience.Breaker {
	return resilience.NewBreaker("anthropic", append([]resilience.BreakerOption{resilience.WithTrip(upstreamFailure)}, opts...)...)
}

func upstreamFailure(err error) bool {
	if code := anthropic.StatusCode(err); code != 0 {
		return resilience.IsTransientStatus(code)
	}
	return resilience.IsTransient(err)
}

// Enabled reports whether the advisor can reach the API.
func (a *Advisor) Enabled() bool {
	return a != nil && a.client != nil
}

// Advise asks for guidance on the given farm.
func (a *Advisor) Advise(ctx context.Context, m model.FarmMetrics, question string) (*Advice, error) {
	if !a.Enabled() {
		return nil, ErrAdvisorDisabled
	}

	question = strings.TrimSpace(question)
	if question == "" {
		question = DefaultQuestion
	}

	req := anthropic.Request{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    systemPrompt,
		CacheTTL:  "5m",
		Prompt:    BuildPrompt(m, question),
	}

	var resp *anthropic.Response
	call := func(ctx context.Context) error {
		var err error
		resp, err = a.client.Ask(ctx, req)
		return err
	}

	var err error
	if a.breaker != nil {
		err = a.breaker.Do(ctx, call)
	} else {
		err = call(ctx)
	}
	if eris.Is(err, resilience.ErrOpen) {
		return nil, eris.Wrapf(ErrAdvisorUnavailable, "farm %s: %v", m.FarmID, err)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "oracle: advise %s", m.FarmID)
	}

	resp.Usage.Log(a.model, m.FarmID)

	answer := resp.Text
	switch {
	case answer == "":
		zap.L().Warn("oracle: empty answer",
			zap.String("farm_id", m.FarmID),
			zap.String("stop_reason", resp.StopReason),
		)
	case resp.Truncated():
		zap.L().Warn("oracle: answer hit max_tokens",
			zap.String("farm_id", m.FarmID),
			zap.Int64("max_tokens", a.maxTokens),
		)
	}

	return &Advice{
		FarmID:   m.FarmID,
		Question: question,
		Answer:   answer,
		Model:    a.model,
		Usage:    resp.Usage,
	}, nil
}

// BuildPrompt renders the farm summary and question as the user message.
func BuildPrompt(m model.FarmMetrics, question string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Farm %s (%s", m.FarmID, m.LandType)
	if m.Name != "" {
		fmt.Fprintf(&b, ", %s", m.Name)
	}
	b.WriteString(")\n")
	fmt.Fprintf(&b, "Centroid: %.4f, %.4f\n", m.Centroid.Lat, m.Centroid.Lng)
	fmt.Fprintf(&b, "Approximate area: %.0f km²\n", m.AreaApprox)
	fmt.Fprintf(&b, "Aura health: %d/100\n", m.AuraHealth)
	fmt.Fprintf(&b, "Vegetation index: %.3f\n", m.VegetationIndex)
	fmt.Fprintf(&b, "Soil moisture: %.3f\n", m.SoilMoisture)
	fmt.Fprintf(&b, "Crop density: %.3f\n", m.CropDensity)
	fmt.Fprintf(&b, "Temperature: %.1f °C\n", m.Temperature)
	fmt.Fprintf(&b, "Rainfall: %.1f mm\n", m.Rainfall)
	if len(m.RiskFactors) > 0 {
		fmt.Fprintf(&b, "Risk factors: %s\n", strings.Join(m.RiskFactors, "; "))
	} else {
		b.WriteString("Risk factors: none\n")
	}
	fmt.Fprintf(&b, "\nQuestion: %s", question)
	return b.String()
}
