package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/just/internal/genai"
	"github.com/terraincognita07/just/internal/models"
	"golang.org/x/text/unicode/norm"
)

const (
	suggestedGoalCount = 3
	maxGoalTextLength  = 80

	quotePromptTemplate = "Give me a short, warm, and encouraging quote in %s for someone who is trying to start studying or getting out of a slump. Just the quote, no explanations."
	goalsPromptTemplate = "Generate %d small, easy-to-achieve daily goals written in %s for someone who might be a social recluse or 'just resting'. Mix of simple health tasks (drinking water), small social tasks, or tiny study tasks. Return ONLY valid JSON array format: [{\"text\": \"string\", \"type\": \"study\" | \"health\" | \"social\"}]"
)

var errSuggestionShape = errors.New("suggestion batch has unexpected shape")

type ContentGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	Ping(ctx context.Context) error
}

// GeneratorFactory binds a generator to one credential value.
type GeneratorFactory func(credential string) ContentGenerator

type CredentialSource interface {
	Load() (string, bool)
	Present() bool
}

type Translator interface {
	Translate(lang string, key string) string
}

// ContentService decides between the generative service and the fixed
// fallback content. Passive fetches never return errors.
type ContentService struct {
	credentials  CredentialSource
	newGenerator GeneratorFactory
	messages     Translator
	now          func() time.Time
}

func NewContentService(credentials CredentialSource, newGenerator GeneratorFactory, messages Translator) *ContentService {
	return &ContentService{
		credentials:  credentials,
		newGenerator: newGenerator,
		messages:     messages,
		now:          time.Now,
	}
}

func (service *ContentService) FallbackQuote(lang string) string {
	return service.messages.Translate(lang, "quote.fallback")
}

func (service *ContentService) FallbackGoals(lang string) []models.Goal {
	return []models.Goal{
		{ID: "def-1", Text: service.messages.Translate(lang, "goal.fallback.health"), Type: models.GoalTypeHealth},
		{ID: "def-2", Text: service.messages.Translate(lang, "goal.fallback.study"), Type: models.GoalTypeStudy},
	}
}

func (service *ContentService) FetchQuote(ctx context.Context, lang string) string {
	generator, ok := service.generator()
	if !ok {
		return service.FallbackQuote(lang)
	}

	prompt := fmt.Sprintf(quotePromptTemplate, service.messages.Translate(lang, "prompt.language_name"))
	quote, err := generator.GenerateText(ctx, prompt)
	if err != nil {
		slog.Warn("quote fetch failed, using fallback", "component", "content", "error", err)
		return service.FallbackQuote(lang)
	}
	quote = strings.TrimSpace(quote)
	if quote == "" {
		slog.Warn("quote fetch returned empty text, using fallback", "component", "content")
		return service.FallbackQuote(lang)
	}
	return quote
}

func (service *ContentService) FetchSuggestedGoals(ctx context.Context, lang string) []models.Goal {
	generator, ok := service.generator()
	if !ok {
		return service.FallbackGoals(lang)
	}

	prompt := fmt.Sprintf(goalsPromptTemplate, suggestedGoalCount, service.messages.Translate(lang, "prompt.language_name"))
	raw, err := generator.GenerateJSON(ctx, prompt)
	if err != nil {
		slog.Warn("goal suggestions fetch failed, using fallback", "component", "content", "error", err)
		return service.FallbackGoals(lang)
	}

	goals, err := service.parseSuggestions(raw)
	if err != nil {
		slog.Warn("goal suggestions malformed, using fallback", "component", "content", "error", err)
		return service.FallbackGoals(lang)
	}
	return goals
}

// TestCredential checks candidate with one minimal call. It never touches
// the stored credential.
func (service *ContentService) TestCredential(ctx context.Context, candidate string) bool {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return false
	}
	if err := service.newGenerator(candidate).Ping(ctx); err != nil {
		slog.Info("credential test failed", "component", "content", "error", err)
		return false
	}
	return true
}

func (service *ContentService) generator() (ContentGenerator, bool) {
	if !service.credentials.Present() {
		return nil, false
	}
	credential, ok := service.credentials.Load()
	if !ok {
		return nil, false
	}
	return service.newGenerator(credential), true
}

type suggestedGoal struct {
	Text *string `json:"text"`
	Type *string `json:"type"`
}

func (service *ContentService) parseSuggestions(raw string) ([]models.Goal, error) {
	var batch []suggestedGoal
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &batch); err != nil {
		extracted := genai.ExtractJSONArray(raw)
		if extracted == "" {
			return nil, fmt.Errorf("%w: %v", errSuggestionShape, err)
		}
		if err := json.Unmarshal([]byte(extracted), &batch); err != nil {
			return nil, fmt.Errorf("%w: %v", errSuggestionShape, err)
		}
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("%w: empty array", errSuggestionShape)
	}
	if len(batch) > suggestedGoalCount {
		batch = batch[:suggestedGoalCount]
	}

	stamp := service.now().UnixMilli()
	goals := make([]models.Goal, 0, len(batch))
	for index, item := range batch {
		if item.Text == nil || item.Type == nil {
			return nil, fmt.Errorf("%w: item %d missing fields", errSuggestionShape, index)
		}
		text := NormalizeGoalText(*item.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: item %d has empty text", errSuggestionShape, index)
		}
		goalType, ok := models.ParseGoalType(*item.Type)
		if !ok {
			return nil, fmt.Errorf("%w: item %d has type %q", errSuggestionShape, index, *item.Type)
		}
		goals = append(goals, models.Goal{
			ID:   fmt.Sprintf("ai-goal-%d-%d-%s", stamp, index, uuid.NewString()[:8]),
			Text: text,
			Type: goalType,
		})
	}
	return goals, nil
}

// NormalizeGoalText trims, NFC-normalises and caps goal text so equal
// Hangul renders compare equal during de-duplication.
func NormalizeGoalText(raw string) string {
	text := norm.NFC.String(strings.TrimSpace(raw))
	runes := []rune(text)
	if len(runes) > maxGoalTextLength {
		text = strings.TrimSpace(string(runes[:maxGoalTextLength]))
	}
	return text
}

// MergeGoals appends batch entries whose text is not already present in
// existing (or earlier in the batch). Existing entries keep their order and state.
func MergeGoals(existing []models.Goal, batch []models.Goal) []models.Goal {
	merged := make([]models.Goal, 0, len(existing)+len(batch))
	merged = append(merged, existing...)

	seenText := make(map[string]struct{}, len(merged)+len(batch))
	seenID := make(map[string]struct{}, len(merged)+len(batch))
	for _, goal := range merged {
		seenText[goal.Text] = struct{}{}
		seenID[goal.ID] = struct{}{}
	}
	for _, goal := range batch {
		if _, duplicate := seenText[goal.Text]; duplicate {
			continue
		}
		if _, clash := seenID[goal.ID]; clash {
			continue
		}
		seenText[goal.Text] = struct{}{}
		seenID[goal.ID] = struct{}{}
		merged = append(merged, goal)
	}
	return merged
}
