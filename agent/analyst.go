package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/cineanalyst/cineanalyst/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

const (
	// systemPromptFormat embeds the retrieved context verbatim into the
	// system instruction sent to the model.
	systemPromptFormat = "당신은 영화 전문가입니다. 다음 문맥을 참고하세요: %s"

	// degradedAnswerPrefix is the fixed apology returned when the model is
	// unreachable. The degraded answer always starts with this string.
	degradedAnswerPrefix = "모델 서버 연결에 실패했습니다. 검색된 참고 자료로 대신 답변을 드립니다.\n"

	// degradedContextLimit bounds how much of the retrieved context is echoed
	// into a degraded answer, in runes.
	degradedContextLimit = 200

	confidenceAnswered = 0.9
	confidenceDegraded = 0.2
)

// Answer is the analyst's result. Degraded distinguishes a real model answer
// from the availability fallback, so callers do not have to sniff strings.
type Answer struct {
	Text     string
	Degraded bool
}

// AnalystOptions configuration for the answer generator.
type AnalystOptions struct {
	// Temperature for the model call. Zero is a valid setting, so the
	// field is a pointer; nil means the default of 0.2.
	Temperature *float64

	MaxTokens int           // Default 1024
	Timeout   time.Duration // Bound on the inference call, default 30s
}

// Analyst builds the final prompt from retrieved context plus conversation
// history and calls the remote model. Any failure of the remote call is
// recovered locally into a degraded Answer; the Analyst never returns an
// error for model-side faults.
type Analyst struct {
	model       llms.Model
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

// NewAnalyst creates a new answer generator over the given model.
func NewAnalyst(model llms.Model, opts AnalystOptions) *Analyst {
	temperature := 0.2
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 1024
	}
	if opts.Timeout == 0 {
		// Tuned to model inference latency, not network round trips.
		opts.Timeout = 30 * time.Second
	}

	return &Analyst{
		model:       model,
		temperature: temperature,
		maxTokens:   opts.MaxTokens,
		timeout:     opts.Timeout,
	}
}

// Generate produces the answer for the given history and retrieved context.
func (a *Analyst) Generate(ctx context.Context, history []llms.MessageContent, retrieved string) Answer {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := make([]llms.MessageContent, 0, len(history)+1)
	prompt = append(prompt, llms.TextParts(schema.ChatMessageTypeSystem, fmt.Sprintf(systemPromptFormat, retrieved)))
	prompt = append(prompt, history...)

	resp, err := a.model.GenerateContent(ctx, prompt,
		llms.WithTemperature(a.temperature),
		llms.WithMaxTokens(a.maxTokens),
	)
	if err != nil {
		log.Warn("model call failed, returning degraded answer: %v", err)
		return degradedAnswer(retrieved)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		log.Warn("model returned no usable choice, returning degraded answer")
		return degradedAnswer(retrieved)
	}

	return Answer{Text: resp.Choices[0].Content}
}

// degradedAnswer builds the availability fallback: the fixed apology plus a
// bounded prefix of the retrieved context, so the caller is not left with
// zero information.
func degradedAnswer(retrieved string) Answer {
	return Answer{
		Text:     degradedAnswerPrefix + truncateRunes(retrieved, degradedContextLimit),
		Degraded: true,
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
