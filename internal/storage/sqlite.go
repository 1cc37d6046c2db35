package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"newsfeed/internal/models"
	"newsfeed/internal/relevance"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pemistahl/lingua-go"
)

type SQLiteStorage struct {
	db       *sql.DB
	detector lingua.LanguageDetector
	mutex    sync.Mutex
}

func NewSQLiteStorage(dataDir string) (*SQLiteStorage, error) {
	// Ensure data directory exists with secure permissions (0750)
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "news_feed.db")
	log.Printf("Initializing database at: %s", dbPath)

	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	// Language detector covering the common news feed languages
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English, lingua.German, lingua.French, lingua.Spanish,
			lingua.Chinese, lingua.Russian, lingua.Italian, lingua.Portuguese,
			lingua.Dutch, lingua.Swedish, lingua.Danish, lingua.Finnish,
		).
		Build()

	return &SQLiteStorage{
		db:       db,
		detector: detector,
	}, nil
}

func createTables(db *sql.DB) error {
	articlesTable := `
	CREATE TABLE IF NOT EXISTS articles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		url TEXT UNIQUE NOT NULL,
		content TEXT,
		author TEXT,
		published DATETIME NOT NULL,
		source_url TEXT,
		guid TEXT UNIQUE,
		category TEXT DEFAULT 'uncategorized',
		sentiment TEXT DEFAULT 'neutral',
		importance TEXT DEFAULT 'medium',
		topics TEXT, -- JSON array
		summary TEXT,
		ai_summary TEXT, -- On-demand AI summary, cached once generated
		political_bias REAL DEFAULT 0.0, -- -1.0 (left) to 1.0 (right)
		bias_confidence REAL DEFAULT 0.0,
		bias_reasoning TEXT,
		embedding BLOB, -- JSON-encoded embedding vector
		relevance_score REAL DEFAULT 0.5,
		read_status BOOLEAN DEFAULT 0,
		language TEXT DEFAULT 'en',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	feedsTable := `
	CREATE TABLE IF NOT EXISTS feeds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		url TEXT UNIQUE NOT NULL,
		description TEXT,
		link TEXT,
		language TEXT DEFAULT 'en',
		category TEXT,
		active BOOLEAN DEFAULT 1,
		last_fetched DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	preferencesTable := `
	CREATE TABLE IF NOT EXISTS category_preferences (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category TEXT NOT NULL,
		keywords TEXT NOT NULL, -- JSON array
		priority REAL DEFAULT 1.0,
		active BOOLEAN DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(category)
	);`

	interactionsTable := `
	CREATE TABLE IF NOT EXISTS user_interactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		article_id INTEGER NOT NULL,
		action TEXT NOT NULL, -- 'view', 'like', 'dislike', 'share', 'read_time', 'read'
		value REAL DEFAULT 1.0,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (article_id) REFERENCES articles(id) ON DELETE CASCADE
	);`

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_articles_ranking ON articles(relevance_score DESC, published DESC);",
		"CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category);",
		"CREATE INDEX IF NOT EXISTS idx_articles_read_status ON articles(read_status);",
		"CREATE INDEX IF NOT EXISTS idx_interactions_article ON user_interactions(article_id);",
	}

	for _, table := range []string{articlesTable, feedsTable, preferencesTable, interactionsTable} {
		if _, err := db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for _, index := range indexes {
		if _, err := db.Exec(index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// UpsertArticle inserts an article or, when its url/guid already exists,
// replaces the enrichment fields in place. Read status and any cached AI
// summary survive re-ingestion of the same article.
func (s *SQLiteStorage) UpsertArticle(article *models.Article) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if article.URL == "" {
		return 0, fmt.Errorf("article url is required")
	}
	if article.GUID == "" {
		article.GUID = article.URL
	}
	if article.Language == "" {
		article.Language = s.detectLanguage(article.Title + " " + article.Content)
	}

	// Persistence invariants: scores always land inside their ranges.
	article.RelevanceScore = relevance.Clamp(article.RelevanceScore, 0.0, 1.0)
	article.PoliticalBias = relevance.Clamp(article.PoliticalBias, -1.0, 1.0)
	article.BiasConfidence = relevance.Clamp(article.BiasConfidence, 0.0, 1.0)

	if article.Topics == nil {
		article.Topics = []string{}
	}

	topicsJSON, err := json.Marshal(article.Topics)
	if err != nil {
		return 0, fmt.Errorf("failed to encode topics: %w", err)
	}

	embeddingBlob, err := encodeEmbedding(article.Embedding)
	if err != nil {
		return 0, fmt.Errorf("failed to encode embedding: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO articles (title, url, content, author, published, source_url, guid,
			category, sentiment, importance, topics, summary,
			political_bias, bias_confidence, bias_reasoning, embedding, relevance_score, language)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			author = excluded.author,
			published = excluded.published,
			source_url = excluded.source_url,
			category = excluded.category,
			sentiment = excluded.sentiment,
			importance = excluded.importance,
			topics = excluded.topics,
			summary = excluded.summary,
			political_bias = excluded.political_bias,
			bias_confidence = excluded.bias_confidence,
			bias_reasoning = excluded.bias_reasoning,
			embedding = excluded.embedding,
			relevance_score = excluded.relevance_score,
			language = excluded.language,
			updated_at = CURRENT_TIMESTAMP
		ON CONFLICT(guid) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			content = excluded.content,
			author = excluded.author,
			published = excluded.published,
			source_url = excluded.source_url,
			category = excluded.category,
			sentiment = excluded.sentiment,
			importance = excluded.importance,
			topics = excluded.topics,
			summary = excluded.summary,
			political_bias = excluded.political_bias,
			bias_confidence = excluded.bias_confidence,
			bias_reasoning = excluded.bias_reasoning,
			embedding = excluded.embedding,
			relevance_score = excluded.relevance_score,
			language = excluded.language,
			updated_at = CURRENT_TIMESTAMP
	`, article.Title, article.URL, article.Content, article.Author, article.Published,
		article.SourceURL, article.GUID, article.Category, article.Sentiment, article.Importance,
		string(topicsJSON), article.Summary, article.PoliticalBias, article.BiasConfidence,
		article.BiasReasoning, embeddingBlob, article.RelevanceScore, article.Language)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert article: %w", err)
	}

	var id int64
	if err := s.db.QueryRow("SELECT id FROM articles WHERE url = ?", article.URL).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to resolve article id: %w", err)
	}

	article.ID = id
	return id, nil
}

const articleColumns = `id, title, url, content, author, published, source_url, guid,
	category, sentiment, importance, topics, summary, ai_summary,
	political_bias, bias_confidence, bias_reasoning, embedding, relevance_score,
	read_status, language, created_at, updated_at`

// GetArticle returns a single article by id, or ErrNotFound.
func (s *SQLiteStorage) GetArticle(id int64) (*models.Article, error) {
	row := s.db.QueryRow("SELECT "+articleColumns+" FROM articles WHERE id = ?", id)

	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return article, nil
}

// QueryArticles answers filtered, ranked, paginated article queries.
// Ordering is a contract: relevance_score descending, ties broken by
// published descending.
func (s *SQLiteStorage) QueryArticles(query *models.ArticleQuery) ([]models.Article, error) {
	if query == nil {
		query = &models.ArticleQuery{}
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	sqlQuery := "SELECT " + articleColumns + " FROM articles WHERE relevance_score >= ?"
	params := []interface{}{query.MinRelevance}

	if query.Category != "" {
		sqlQuery += " AND category = ?"
		params = append(params, query.Category)
	}
	if query.ReadStatus != nil {
		sqlQuery += " AND read_status = ?"
		params = append(params, *query.ReadStatus)
	}

	sqlQuery += " ORDER BY relevance_score DESC, published DESC LIMIT ? OFFSET ?"
	params = append(params, limit, offset)

	rows, err := s.db.Query(sqlQuery, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	articles := []models.Article{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, *article)
	}

	return articles, rows.Err()
}

// UpdateArticleAISummary caches the lazily generated summary.
func (s *SQLiteStorage) UpdateArticleAISummary(id int64, summary string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	result, err := s.db.Exec(
		"UPDATE articles SET ai_summary = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		summary, id)
	if err != nil {
		return fmt.Errorf("failed to update AI summary: %w", err)
	}

	return requireRows(result)
}

// MarkArticleRead flips the read flag and appends a 'read' interaction in
// the same transaction; either both happen or neither.
func (s *SQLiteStorage) MarkArticleRead(id int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				log.Printf("Warning: failed to rollback transaction: %v", err)
			}
		}
	}()

	result, err := tx.Exec("UPDATE articles SET read_status = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to mark article read: %w", err)
	}
	if err := requireRows(result); err != nil {
		return err
	}

	if _, err := tx.Exec(
		"INSERT INTO user_interactions (article_id, action, value) VALUES (?, ?, ?)",
		id, models.ActionRead, 1.0); err != nil {
		return fmt.Errorf("failed to record read interaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit read transaction: %w", err)
	}
	committed = true

	return nil
}

// MarkArticleUnread clears the read flag. No interaction is logged.
func (s *SQLiteStorage) MarkArticleUnread(id int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	result, err := s.db.Exec("UPDATE articles SET read_status = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to mark article unread: %w", err)
	}

	return requireRows(result)
}

// ReadingStats returns read/unread/total counts and the read percentage
// rounded to one decimal. An empty table yields 0.0, never a division by
// zero.
func (s *SQLiteStorage) ReadingStats() (*models.ReadingStats, error) {
	var read, unread, total sql.NullInt64
	err := s.db.QueryRow(`
		SELECT
			SUM(CASE WHEN read_status = 1 THEN 1 ELSE 0 END),
			SUM(CASE WHEN read_status = 0 THEN 1 ELSE 0 END),
			COUNT(*)
		FROM articles
	`).Scan(&read, &unread, &total)
	if err != nil {
		return nil, fmt.Errorf("failed to get reading stats: %w", err)
	}

	stats := &models.ReadingStats{
		Read:   int(read.Int64),
		Unread: int(unread.Int64),
		Total:  int(total.Int64),
	}
	if stats.Total > 0 {
		stats.ReadPercentage = math.Round(float64(stats.Read)/float64(stats.Total)*1000) / 10
	}

	return stats, nil
}

// RecordInteraction appends one entry to the interaction log.
func (s *SQLiteStorage) RecordInteraction(articleID int64, action string, value float64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var exists int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM articles WHERE id = ?", articleID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check article: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	if _, err := s.db.Exec(
		"INSERT INTO user_interactions (article_id, action, value) VALUES (?, ?, ?)",
		articleID, action, value); err != nil {
		return fmt.Errorf("failed to record interaction: %w", err)
	}

	return nil
}

// CleanupOldArticles removes articles published before the retention
// window.
func (s *SQLiteStorage) CleanupOldArticles(retention time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := time.Now().Add(-retention)

	result, err := s.db.Exec("DELETE FROM articles WHERE published < ?", cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete old articles: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows > 0 {
		log.Printf("Cleaned up %d old articles (older than %v)", rows, retention)
	}

	return nil
}

// UpsertFeed inserts a feed source or refreshes its metadata when the URL
// is already subscribed.
func (s *SQLiteStorage) UpsertFeed(feed *models.Feed) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if feed.URL == "" {
		return 0, fmt.Errorf("feed url is required")
	}
	if feed.Language == "" {
		feed.Language = "en"
	}

	_, err := s.db.Exec(`
		INSERT INTO feeds (title, url, description, link, language, category, active)
		VALUES (?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			link = excluded.link,
			language = excluded.language,
			category = excluded.category,
			active = 1
	`, feed.Title, feed.URL, feed.Description, feed.Link, feed.Language, nullString(feed.Category))
	if err != nil {
		return 0, fmt.Errorf("failed to upsert feed: %w", err)
	}

	var id int64
	if err := s.db.QueryRow("SELECT id FROM feeds WHERE url = ?", feed.URL).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to resolve feed id: %w", err)
	}

	feed.ID = id
	return id, nil
}

// ListActiveFeeds returns all feeds currently enabled for polling.
func (s *SQLiteStorage) ListActiveFeeds() ([]models.Feed, error) {
	rows, err := s.db.Query(`
		SELECT id, title, url, description, link, language, category, active, last_fetched, created_at
		FROM feeds WHERE active = 1 ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}
	defer rows.Close()

	feeds := []models.Feed{}
	for rows.Next() {
		var feed models.Feed
		var category sql.NullString
		var lastFetched sql.NullTime
		if err := rows.Scan(&feed.ID, &feed.Title, &feed.URL, &feed.Description, &feed.Link,
			&feed.Language, &category, &feed.Active, &lastFetched, &feed.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feed: %w", err)
		}
		feed.Category = category.String
		if lastFetched.Valid {
			t := lastFetched.Time
			feed.LastFetched = &t
		}
		feeds = append(feeds, feed)
	}

	return feeds, rows.Err()
}

// DeleteFeed removes a feed subscription.
func (s *SQLiteStorage) DeleteFeed(id int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	result, err := s.db.Exec("DELETE FROM feeds WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete feed: %w", err)
	}

	return requireRows(result)
}

// TouchFeedFetched records a successful poll of the feed.
func (s *SQLiteStorage) TouchFeedFetched(id int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	result, err := s.db.Exec("UPDATE feeds SET last_fetched = CURRENT_TIMESTAMP WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to touch feed: %w", err)
	}

	return requireRows(result)
}

// UpsertCategoryPreference stores a preference, replacing the keyword set
// and priority of an existing category rather than duplicating it.
func (s *SQLiteStorage) UpsertCategoryPreference(category string, keywords []string, priority float64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	keywordsJSON, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("failed to encode keywords: %w", err)
	}

	if _, err := s.db.Exec(`
		INSERT INTO category_preferences (category, keywords, priority, active)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(category) DO UPDATE SET
			keywords = excluded.keywords,
			priority = excluded.priority,
			active = 1
	`, category, string(keywordsJSON), priority); err != nil {
		return fmt.Errorf("failed to upsert preference: %w", err)
	}

	return nil
}

// ListCategoryPreferences returns all active preferences.
func (s *SQLiteStorage) ListCategoryPreferences() ([]models.CategoryPreference, error) {
	rows, err := s.db.Query(`
		SELECT id, category, keywords, priority, active, created_at
		FROM category_preferences WHERE active = 1 ORDER BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	defer rows.Close()

	prefs := []models.CategoryPreference{}
	for rows.Next() {
		var pref models.CategoryPreference
		var keywordsJSON string
		if err := rows.Scan(&pref.ID, &pref.Category, &keywordsJSON, &pref.Priority, &pref.Active, &pref.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		if err := json.Unmarshal([]byte(keywordsJSON), &pref.Keywords); err != nil {
			return nil, fmt.Errorf("failed to decode keywords: %w", err)
		}
		prefs = append(prefs, pref)
	}

	return prefs, rows.Err()
}

// DeleteCategoryPreference removes the preference for a category.
func (s *SQLiteStorage) DeleteCategoryPreference(category string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	result, err := s.db.Exec("DELETE FROM category_preferences WHERE category = ?", category)
	if err != nil {
		return fmt.Errorf("failed to delete preference: %w", err)
	}

	return requireRows(result)
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// detectLanguage returns the ISO 639-1 code of the dominant language, 'en'
// when detection is inconclusive.
func (s *SQLiteStorage) detectLanguage(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return "en"
	}
	if len(sample) > 400 {
		sample = sample[:400]
	}

	if lang, ok := s.detector.DetectLanguageOf(sample); ok {
		return strings.ToLower(lang.IsoCode639_1().String())
	}
	return "en"
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var article models.Article
	var content, author, sourceURL, guid, topicsJSON, summary, biasReasoning, language sql.NullString
	var aiSummary sql.NullString
	var embeddingBlob []byte

	err := row.Scan(&article.ID, &article.Title, &article.URL, &content, &author,
		&article.Published, &sourceURL, &guid, &article.Category, &article.Sentiment,
		&article.Importance, &topicsJSON, &summary, &aiSummary, &article.PoliticalBias,
		&article.BiasConfidence, &biasReasoning, &embeddingBlob, &article.RelevanceScore,
		&article.ReadStatus, &language, &article.CreatedAt, &article.UpdatedAt)
	if err != nil {
		return nil, err
	}

	article.Content = content.String
	article.Author = author.String
	article.SourceURL = sourceURL.String
	article.GUID = guid.String
	article.Summary = summary.String
	article.AISummary = aiSummary.String
	article.BiasReasoning = biasReasoning.String
	article.Language = language.String

	article.Topics = []string{}
	if topicsJSON.Valid && topicsJSON.String != "" {
		if err := json.Unmarshal([]byte(topicsJSON.String), &article.Topics); err != nil {
			article.Topics = []string{}
		}
	}

	if embedding, err := decodeEmbedding(embeddingBlob); err == nil {
		article.Embedding = embedding
	}

	return &article, nil
}

func encodeEmbedding(embedding []float64) ([]byte, error) {
	if embedding == nil {
		return nil, nil
	}
	return json.Marshal(embedding)
}

func decodeEmbedding(blob []byte) ([]float64, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	var embedding []float64
	if err := json.Unmarshal(blob, &embedding); err != nil {
		return nil, err
	}
	return embedding, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func requireRows(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
