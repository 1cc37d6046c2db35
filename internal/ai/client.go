package ai

import (
	"context"

	"newsfeed/internal/models"
)

// FallbackReasoning is the fixed explanation attached when bias analysis
// could not run.
const FallbackReasoning = "Unable to analyze bias due to AI processing error."

// Client is the capability boundary to the external annotation model.
// Implementations absorb their own failures: Annotate degrades to a
// deterministic fallback annotation and Embed to a nil vector, so callers
// never see enrichment errors.
type Client interface {
	// Available reports whether the model backend is reachable and has at
	// least one model loaded.
	Available() bool

	// Annotate produces AI-derived metadata for an article. The boolean is
	// true for a genuine model answer and false when the deterministic
	// fallback was substituted.
	Annotate(ctx context.Context, title, content string, prefs []models.CategoryPreference) (models.Annotation, bool)

	// Embed returns a fixed-length embedding vector for text, or nil when
	// no vector could be produced.
	Embed(text string) []float64

	// Summarize generates a short summary of article content.
	Summarize(ctx context.Context, content string) (string, error)
}

// FallbackAnnotation is the neutral annotation substituted whenever the
// model is unreachable or returns unparseable output.
func FallbackAnnotation(title string) models.Annotation {
	return models.Annotation{
		Category:       models.CategoryUncategorized,
		Sentiment:      models.SentimentNeutral,
		Importance:     models.ImportanceMedium,
		Topics:         []string{},
		Summary:        title,
		PoliticalBias:  0.0,
		BiasConfidence: 0.0,
		BiasReasoning:  FallbackReasoning,
		RelevanceBoost: 0.0,
	}
}
