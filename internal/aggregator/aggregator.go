package aggregator

import (
	"context"
	"fmt"
	"html"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"newsfeed/internal/ai"
	"newsfeed/internal/cache"
	"newsfeed/internal/models"
	"newsfeed/internal/relevance"
	"newsfeed/internal/storage"

	"github.com/mmcdole/gofeed"
)

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Aggregator fetches subscribed feeds and runs each new article through
// the enrichment pipeline before persisting it.
type Aggregator struct {
	storage      storage.Storage
	aiClient     ai.Client
	cacheManager *cache.Manager
	parser       *gofeed.Parser
}

type feedResult struct {
	Feed     models.Feed
	Articles []models.Article
	Error    error
}

func New(store storage.Storage, aiClient ai.Client, cacheManager *cache.Manager) *Aggregator {
	return &Aggregator{
		storage:      store,
		aiClient:     aiClient,
		cacheManager: cacheManager,
		parser:       gofeed.NewParser(),
	}
}

// RefreshAll runs one ingestion cycle over every active feed. It returns
// the number of feeds processed and the number of articles stored. A
// single article or feed failing logs and continues; only a storage-level
// listing failure aborts the cycle.
func (a *Aggregator) RefreshAll(ctx context.Context) (int, int, error) {
	feeds, err := a.storage.ListActiveFeeds()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list feeds: %w", err)
	}
	if len(feeds) == 0 {
		return 0, 0, nil
	}

	prefs, err := a.storage.ListCategoryPreferences()
	if err != nil {
		log.Printf("Warning: failed to load preferences, scoring without them: %v", err)
		prefs = nil
	}
	profile := a.profileEmbedding(prefs)

	results := a.fetchFeedsParallel(ctx, feeds)

	stored := 0
	for _, result := range results {
		if result.Error != nil {
			log.Printf("Error fetching feed %s: %v", result.Feed.URL, result.Error)
			continue
		}

		for i := range result.Articles {
			article := &result.Articles[i]
			a.enrich(ctx, article, prefs, profile)
			if _, err := a.storage.UpsertArticle(article); err != nil {
				log.Printf("Error storing article %s: %v", article.URL, err)
				continue
			}
			stored++
		}

		if result.Feed.ID != 0 {
			if err := a.storage.TouchFeedFetched(result.Feed.ID); err != nil {
				log.Printf("Warning: failed to update fetch time for feed %s: %v", result.Feed.URL, err)
			}
		}
	}

	a.cacheManager.Flush()
	log.Printf("Refresh cycle complete: %d feeds, %d articles stored", len(feeds), stored)

	return len(feeds), stored, nil
}

func (a *Aggregator) fetchFeedsParallel(ctx context.Context, feeds []models.Feed) []feedResult {
	var wg sync.WaitGroup
	results := make(chan feedResult, len(feeds))

	for _, feed := range feeds {
		wg.Add(1)
		go func(feed models.Feed) {
			defer wg.Done()
			articles, err := a.fetchFeed(ctx, feed)
			results <- feedResult{Feed: feed, Articles: articles, Error: err}
		}(feed)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var collected []feedResult
	for result := range results {
		collected = append(collected, result)
	}
	return collected
}

func (a *Aggregator) fetchFeed(ctx context.Context, feed models.Feed) ([]models.Article, error) {
	parsed, err := a.parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	var articles []models.Article
	for _, item := range parsed.Items {
		if item.Link == "" {
			continue
		}

		authorName := ""
		if item.Author != nil {
			authorName = item.Author.Name
		}

		content := item.Content
		if content == "" {
			content = item.Description
		}

		article := models.Article{
			Title:     stripHTML(item.Title),
			URL:       item.Link,
			Content:   stripHTML(content),
			Author:    authorName,
			Published: time.Now(),
			SourceURL: feed.URL,
			GUID:      item.GUID,
		}
		if article.GUID == "" {
			article.GUID = item.Link
		}
		if item.PublishedParsed != nil {
			article.Published = *item.PublishedParsed
		}

		articles = append(articles, article)
	}

	return articles, nil
}

// enrich fills in the AI-derived fields of a raw article in place. The
// pipeline never fails: model problems degrade to fallback values.
func (a *Aggregator) enrich(ctx context.Context, article *models.Article, prefs []models.CategoryPreference, profile []float64) {
	article.Embedding = a.aiClient.Embed(article.Title + "\n" + article.Content)

	base := relevance.DefaultScore
	if len(profile) > 0 && len(article.Embedding) > 0 {
		base = relevance.CosineSimilarity(article.Embedding, profile)
	}

	annotation, _ := a.aiClient.Annotate(ctx, article.Title, article.Content, prefs)
	article.Category = annotation.Category
	article.Sentiment = annotation.Sentiment
	article.Importance = annotation.Importance
	article.Topics = annotation.Topics
	article.Summary = annotation.Summary
	article.PoliticalBias = annotation.PoliticalBias
	article.BiasConfidence = annotation.BiasConfidence
	article.BiasReasoning = annotation.BiasReasoning
	article.RelevanceScore = relevance.Score(base, annotation.RelevanceBoost)
}

// profileEmbedding derives a single preference vector from the keywords of
// all active preferences. Returns nil when there is nothing to embed.
func (a *Aggregator) profileEmbedding(prefs []models.CategoryPreference) []float64 {
	var terms []string
	for _, pref := range prefs {
		if !pref.Active {
			continue
		}
		terms = append(terms, pref.Category)
		terms = append(terms, pref.Keywords...)
	}
	if len(terms) == 0 {
		return nil
	}
	return a.aiClient.Embed(strings.Join(terms, " "))
}

// stripHTML removes markup and collapses whitespace, leaving plain text.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	s = htmlTagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
