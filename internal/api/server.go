package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"newsfeed/internal/ai"
	"newsfeed/internal/cache"
	"newsfeed/internal/config"
	"newsfeed/internal/models"
	"newsfeed/internal/poller"
	"newsfeed/internal/security"
	"newsfeed/internal/storage"
	"newsfeed/internal/web"

	"github.com/gin-gonic/gin"
)

const defaultArticleLimit = 20

type Server struct {
	router        *gin.Engine
	storage       storage.Storage
	aiClient      ai.Client
	poller        *poller.Poller
	cacheManager  *cache.Manager
	port          int
	swaggerServer *web.SwaggerServer
}

func NewServer(store storage.Storage, aiClient ai.Client, p *poller.Poller, cacheManager *cache.Manager, cfg *config.Config) *Server {
	router := gin.Default()

	security.SetupSecurityMiddleware(router, &cfg.Security)

	server := &Server{
		router:        router,
		storage:       store,
		aiClient:      aiClient,
		poller:        p,
		cacheManager:  cacheManager,
		port:          cfg.Port,
		swaggerServer: web.NewSwaggerServer(cfg.EnableSwagger),
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.root)
	s.router.GET("/health", s.healthCheck)
	s.router.POST("/refresh", s.refresh)

	s.router.GET("/articles", s.getArticles)
	s.router.GET("/articles/:id", s.getArticle)
	s.router.POST("/articles/:id/summary", s.summarizeArticle)
	s.router.GET("/articles/:id/bias-analysis", s.getBiasAnalysis)
	s.router.POST("/articles/:id/read", s.markRead)
	s.router.POST("/articles/:id/unread", s.markUnread)
	s.router.POST("/articles/:id/interact", s.recordInteraction)

	s.router.GET("/stats/reading", s.getReadingStats)

	s.router.GET("/preferences", s.getPreferences)
	s.router.POST("/preferences", s.setPreference)
	s.router.DELETE("/preferences/:category", s.deletePreference)

	s.router.GET("/feeds", s.getFeeds)
	s.router.POST("/feeds", s.addFeed)
	s.router.DELETE("/feeds/:id", s.deleteFeed)

	s.swaggerServer.RegisterRoutes(s.router)
}

func (s *Server) Start() error {
	return s.router.Run(":" + strconv.Itoa(s.port))
}

// StartWithContext runs the server until the context is cancelled, then
// shuts down gracefully.
func (s *Server) StartWithContext(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(s.port),
		Handler: s.router,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":      "news-feed",
		"message":      "AI-enhanced news feed service",
		"ai_available": s.aiClient.Available(),
	})
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"service":       "news-feed",
		"ai_available":  s.aiClient.Available(),
		"poller_active": s.poller.IsPolling(),
	})
}

func (s *Server) refresh(c *gin.Context) {
	feeds, articles, err := s.poller.ForceRefresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Feeds refreshed successfully",
		"feeds":        feeds,
		"new_articles": articles,
	})
}

func (s *Server) getArticles(c *gin.Context) {
	query := &models.ArticleQuery{
		Limit:    defaultArticleLimit,
		Category: c.Query("category"),
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			query.Limit = limit
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset > 0 {
			query.Offset = offset
		}
	}
	if minStr := c.Query("min_relevance"); minStr != "" {
		if min, err := strconv.ParseFloat(minStr, 64); err == nil {
			query.MinRelevance = min
		}
	}
	if readStr := c.Query("read_status"); readStr != "" {
		read := readStr == "true"
		query.ReadStatus = &read
	}

	cacheKey := "articles:" + c.Request.URL.RawQuery
	if cached, found := s.cacheManager.Get(cacheKey); found {
		if articles, ok := cached.([]models.Article); ok {
			c.JSON(http.StatusOK, gin.H{
				"articles": articles,
				"count":    len(articles),
				"limit":    query.Limit,
				"offset":   query.Offset,
			})
			return
		}
	}

	articles, err := s.storage.QueryArticles(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.cacheManager.Set(cacheKey, articles, 0)

	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"count":    len(articles),
		"limit":    query.Limit,
		"offset":   query.Offset,
	})
}

func (s *Server) getArticle(c *gin.Context) {
	article, ok := s.lookupArticle(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, article)
}

func (s *Server) summarizeArticle(c *gin.Context) {
	article, ok := s.lookupArticle(c)
	if !ok {
		return
	}

	if summary, found := s.cacheManager.GetSummary(article.ID); found {
		c.JSON(http.StatusOK, gin.H{"summary": summary, "cached": true})
		return
	}
	if article.AISummary != "" {
		s.cacheManager.SetSummary(article.ID, article.AISummary)
		c.JSON(http.StatusOK, gin.H{"summary": article.AISummary, "cached": true})
		return
	}

	if !s.aiClient.Available() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "AI service is not available",
		})
		return
	}

	summary, err := s.aiClient.Summarize(c.Request.Context(), article.Content)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate summary"})
		return
	}

	if err := s.storage.UpdateArticleAISummary(article.ID, summary); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.cacheManager.SetSummary(article.ID, summary)

	c.JSON(http.StatusOK, gin.H{"summary": summary, "cached": false})
}

func (s *Server) getBiasAnalysis(c *gin.Context) {
	article, ok := s.lookupArticle(c)
	if !ok {
		return
	}

	label, interpretation := models.BiasLabel(article.PoliticalBias)
	c.JSON(http.StatusOK, models.BiasAnalysis{
		ArticleID:          article.ID,
		Title:              article.Title,
		PoliticalBias:      article.PoliticalBias,
		BiasConfidence:     article.BiasConfidence,
		BiasReasoning:      article.BiasReasoning,
		Category:           article.Category,
		BiasLabel:          label,
		BiasInterpretation: interpretation,
	})
}

func (s *Server) markRead(c *gin.Context) {
	id, ok := s.articleID(c)
	if !ok {
		return
	}

	if err := s.storage.MarkArticleRead(id); err != nil {
		s.storageError(c, err)
		return
	}
	s.cacheManager.Flush()

	c.JSON(http.StatusOK, gin.H{"message": "Article marked as read", "article_id": id})
}

func (s *Server) markUnread(c *gin.Context) {
	id, ok := s.articleID(c)
	if !ok {
		return
	}

	if err := s.storage.MarkArticleUnread(id); err != nil {
		s.storageError(c, err)
		return
	}
	s.cacheManager.Flush()

	c.JSON(http.StatusOK, gin.H{"message": "Article marked as unread", "article_id": id})
}

type interactionRequest struct {
	Action string   `json:"action" binding:"required"`
	Value  *float64 `json:"value"`
}

func (s *Server) recordInteraction(c *gin.Context) {
	id, ok := s.articleID(c)
	if !ok {
		return
	}

	var req interactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action is required"})
		return
	}

	value := 1.0
	if req.Value != nil {
		value = *req.Value
	}

	if err := s.storage.RecordInteraction(id, req.Action, value); err != nil {
		s.storageError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Interaction recorded",
		"article_id": id,
		"action":     req.Action,
	})
}

func (s *Server) getReadingStats(c *gin.Context) {
	stats, err := s.storage.ReadingStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (s *Server) getPreferences(c *gin.Context) {
	prefs, err := s.storage.ListCategoryPreferences()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"preferences": prefs,
		"count":       len(prefs),
	})
}

type preferenceRequest struct {
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
	Priority float64  `json:"priority"`
}

func (s *Server) setPreference(c *gin.Context) {
	var req preferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category is required"})
		return
	}
	if len(req.Keywords) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keywords are required"})
		return
	}
	if req.Priority == 0 {
		req.Priority = 1.0
	}

	if err := s.storage.UpsertCategoryPreference(req.Category, req.Keywords, req.Priority); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.cacheManager.Flush()

	c.JSON(http.StatusOK, gin.H{
		"message":  "Preference saved",
		"category": req.Category,
	})
}

func (s *Server) deletePreference(c *gin.Context) {
	category := c.Param("category")

	if err := s.storage.DeleteCategoryPreference(category); err != nil {
		s.storageError(c, err)
		return
	}
	s.cacheManager.Flush()

	c.JSON(http.StatusOK, gin.H{
		"message":  "Preference deleted",
		"category": category,
	})
}

func (s *Server) getFeeds(c *gin.Context) {
	feeds, err := s.storage.ListActiveFeeds()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds": feeds,
		"count": len(feeds),
	})
}

type feedRequest struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Category string `json:"category"`
}

func (s *Server) addFeed(c *gin.Context) {
	var req feedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	id, err := s.storage.UpsertFeed(&models.Feed{
		Title:    req.Title,
		URL:      req.URL,
		Category: req.Category,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Feed added",
		"feed_id": id,
	})
}

func (s *Server) deleteFeed(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid feed id"})
		return
	}

	if err := s.storage.DeleteFeed(id); err != nil {
		s.storageError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Feed deleted",
		"feed_id": id,
	})
}

// articleID parses the :id path parameter, writing a 400 on failure.
func (s *Server) articleID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
		return 0, false
	}
	return id, true
}

// lookupArticle fetches the article named by :id, writing the error
// response on failure.
func (s *Server) lookupArticle(c *gin.Context) (*models.Article, bool) {
	id, ok := s.articleID(c)
	if !ok {
		return nil, false
	}

	article, err := s.storage.GetArticle(id)
	if err != nil {
		s.storageError(c, err)
		return nil, false
	}
	return article, true
}

func (s *Server) storageError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Not found: %v", err)})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
