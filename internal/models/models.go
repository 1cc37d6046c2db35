package models

import (
	"time"
)

// Article categories assigned by the annotation engine.
const (
	CategoryTechnology    = "technology"
	CategoryPolitics      = "politics"
	CategoryBusiness      = "business"
	CategoryScience       = "science"
	CategoryHealth        = "health"
	CategorySports        = "sports"
	CategoryEntertainment = "entertainment"
	CategoryFashion       = "fashion"
	CategoryWorld         = "world"
	CategoryUncategorized = "uncategorized"
)

// Sentiment values assigned by the annotation engine.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Importance values assigned by the annotation engine.
const (
	ImportanceHigh   = "high"
	ImportanceMedium = "medium"
	ImportanceLow    = "low"
)

// Interaction actions recorded against articles.
const (
	ActionView     = "view"
	ActionLike     = "like"
	ActionDislike  = "dislike"
	ActionShare    = "share"
	ActionReadTime = "read_time"
	ActionRead     = "read"
)

// EmbeddingSize is the fixed length of article embedding vectors.
const EmbeddingSize = 384

// Article represents a single enriched news article
type Article struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	Content        string    `json:"content"`
	Author         string    `json:"author"`
	Published      time.Time `json:"published"`
	SourceURL      string    `json:"source_url"`
	GUID           string    `json:"guid"`
	Category       string    `json:"category"`
	Sentiment      string    `json:"sentiment"`
	Importance     string    `json:"importance"`
	Topics         []string  `json:"topics"`
	Summary        string    `json:"summary"`
	AISummary      string    `json:"ai_summary,omitempty"`
	PoliticalBias  float64   `json:"political_bias"`
	BiasConfidence float64   `json:"bias_confidence"`
	BiasReasoning  string    `json:"bias_reasoning"`
	Embedding      []float64 `json:"embedding,omitempty"`
	RelevanceScore float64   `json:"relevance_score"`
	ReadStatus     bool      `json:"read_status"`
	Language       string    `json:"language"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Feed represents a subscribed RSS/Atom source
type Feed struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Description string     `json:"description"`
	Link        string     `json:"link"`
	Language    string     `json:"language"`
	Category    string     `json:"category,omitempty"`
	Active      bool       `json:"active"`
	LastFetched *time.Time `json:"last_fetched,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CategoryPreference represents a user preference for a category of content
type CategoryPreference struct {
	ID        int64     `json:"id"`
	Category  string    `json:"category"`
	Keywords  []string  `json:"keywords"`
	Priority  float64   `json:"priority"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserInteraction is an append-only record of a user action on an article
type UserInteraction struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"article_id"`
	Action    string    `json:"action"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Annotation is the structured AI-derived metadata for one article.
// Field names match the JSON contract of the annotation model verbatim.
type Annotation struct {
	Category       string   `json:"category"`
	Sentiment      string   `json:"sentiment"`
	Importance     string   `json:"importance"`
	Topics         []string `json:"topics"`
	Summary        string   `json:"summary"`
	PoliticalBias  float64  `json:"political_bias"`
	BiasConfidence float64  `json:"bias_confidence"`
	BiasReasoning  string   `json:"bias_reasoning"`
	RelevanceBoost float64  `json:"relevance_boost"`
}

// ArticleQuery represents the filters accepted by the articles endpoint
type ArticleQuery struct {
	Limit        int     `json:"limit"`
	Offset       int     `json:"offset"`
	Category     string  `json:"category"`
	MinRelevance float64 `json:"min_relevance"`
	ReadStatus   *bool   `json:"read_status"`
}

// ReadingStats summarizes read tracking across all stored articles
type ReadingStats struct {
	Total          int     `json:"total_articles"`
	Read           int     `json:"read_count"`
	Unread         int     `json:"unread_count"`
	ReadPercentage float64 `json:"read_percentage"`
}

// BiasAnalysis is the derived bias report for one article
type BiasAnalysis struct {
	ArticleID          int64   `json:"article_id"`
	Title              string  `json:"title"`
	PoliticalBias      float64 `json:"political_bias"`
	BiasConfidence     float64 `json:"bias_confidence"`
	BiasReasoning      string  `json:"bias_reasoning"`
	Category           string  `json:"category"`
	BiasLabel          string  `json:"bias_label"`
	BiasInterpretation string  `json:"bias_interpretation"`
}

// ValidCategories lists every category the annotation engine may assign.
func ValidCategories() []string {
	return []string{
		CategoryTechnology, CategoryPolitics, CategoryBusiness,
		CategoryScience, CategoryHealth, CategorySports,
		CategoryEntertainment, CategoryFashion, CategoryWorld,
		CategoryUncategorized,
	}
}

// IsValidCategory reports whether c is a known category.
func IsValidCategory(c string) bool {
	for _, known := range ValidCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// BiasLabel maps a political bias score to its short label and
// human-readable interpretation. Boundaries sit at -0.5, -0.2, 0.2 and 0.5,
// with the outer labels inclusive of their boundary value.
func BiasLabel(bias float64) (label, interpretation string) {
	switch {
	case bias <= -0.5:
		return "Left", "Left-leaning (progressive, liberal perspective)"
	case bias <= -0.2:
		return "Left-lean", "Slight left lean"
	case bias >= 0.5:
		return "Right", "Right-leaning (conservative perspective)"
	case bias >= 0.2:
		return "Right-lean", "Slight right lean"
	default:
		return "Neutral", "Neutral or non-political"
	}
}
