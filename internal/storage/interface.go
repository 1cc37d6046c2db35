package storage

import (
	"errors"
	"time"

	"newsfeed/internal/models"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Storage defines the persistence operations for articles, feeds,
// preferences and the interaction log.
type Storage interface {
	// Articles
	UpsertArticle(article *models.Article) (int64, error)
	GetArticle(id int64) (*models.Article, error)
	QueryArticles(query *models.ArticleQuery) ([]models.Article, error)
	UpdateArticleAISummary(id int64, summary string) error
	MarkArticleRead(id int64) error
	MarkArticleUnread(id int64) error
	ReadingStats() (*models.ReadingStats, error)
	RecordInteraction(articleID int64, action string, value float64) error
	CleanupOldArticles(retention time.Duration) error

	// Feeds
	UpsertFeed(feed *models.Feed) (int64, error)
	ListActiveFeeds() ([]models.Feed, error)
	DeleteFeed(id int64) error
	TouchFeedFetched(id int64) error

	// Category preferences
	UpsertCategoryPreference(category string, keywords []string, priority float64) error
	ListCategoryPreferences() ([]models.CategoryPreference, error)
	DeleteCategoryPreference(category string) error

	Close() error
}
