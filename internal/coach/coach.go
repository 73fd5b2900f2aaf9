// Package coach asks a hosted language model for exercise tips and body
// composition feedback. Failures never reach the caller: every method returns
// display text.
package coach

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/titanium/internal/model"
)

// Defaults for the OpenAI-compatible Gemini endpoint.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 20 * time.Second
)

// Texts returned instead of a model answer.
const (
	NotConfiguredTip = "API key not configured. Set TITANIUM_API_KEY or add api-key to the [coach] config section."
	FallbackTip      = "Could not load tips right now. Focus on the muscle contraction!"
	FallbackAnalysis = "Stay consistent with your training!"
)

// Coach produces coaching text for the workout and body screens.
type Coach interface {
	ExerciseTip(ctx context.Context, name, notes string) string
	ProgressAnalysis(ctx context.Context, weight, muscleMass, fatMass float64) string
}

// Client is a Coach backed by a chat completions API.
type Client struct {
	client     openai.Client
	model      string
	timeout    time.Duration
	configured bool
}

var _ Coach = (*Client)(nil)

// New builds a Client. Without an API key the client performs no requests.
// Extra request options are applied after the defaults.
func New(cfg model.CoachConfig, opts ...option.RequestOption) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(1),
	}
	clientOpts = append(clientOpts, opts...)

	return &Client{
		client:     openai.NewClient(clientOpts...),
		model:      modelName,
		timeout:    timeout,
		configured: strings.TrimSpace(cfg.APIKey) != "",
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.configured
}

// ExerciseTip returns technique cues for one exercise.
func (c *Client) ExerciseTip(ctx context.Context, name, notes string) string {
	if !c.configured {
		return NotConfiguredTip
	}
	text, err := c.complete(ctx, tipPrompt(name, notes))
	if err != nil {
		logrus.WithError(err).WithField("exercise", name).Warn("exercise tip request failed")
		return FallbackTip
	}
	return text
}

// ProgressAnalysis returns short feedback on a body reading. It returns ""
// when no API key is configured.
func (c *Client) ProgressAnalysis(ctx context.Context, weight, muscleMass, fatMass float64) string {
	if !c.configured {
		return ""
	}
	text, err := c.complete(ctx, analysisPrompt(weight, muscleMass, fatMass))
	if err != nil {
		logrus.WithError(err).Warn("progress analysis request failed")
		return FallbackAnalysis
	}
	return text
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	started := time.Now()
	chat, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("empty completion from %s", c.model)
	}
	text := strings.TrimSpace(chat.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("blank completion from %s", c.model)
	}
	logrus.WithFields(logrus.Fields{
		"model":   c.model,
		"elapsed": time.Since(started).Round(time.Millisecond),
	}).Debug("coach completion")
	return text, nil
}

func tipPrompt(name, notes string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Act as a world-class professional bodybuilding coach. Give concise, focused and motivating tips on correct execution, tempo and breathing for the exercise: %q.", name)
	if notes = strings.TrimSpace(notes); notes != "" {
		fmt.Fprintf(&b, " Take this note from the athlete into account: %s.", notes)
	}
	b.WriteString(" Keep the answer to at most 3 bullet points and a short closing encouragement.")
	return b.String()
}

func analysisPrompt(weight, muscleMass, fatMass float64) string {
	return fmt.Sprintf(
		"Briefly analyse the current body data of a strength athlete: Weight: %gkg, Muscle mass: %gkg, Fat mass: %gkg. Give short feedback (2 sentences) on the current state and one general diet or training recommendation.",
		weight, muscleMass, fatMass,
	)
}
