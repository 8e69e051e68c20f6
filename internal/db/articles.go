package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Article is a raw news article awaiting sentiment classification
type Article struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Content     string    `db:"content" json:"content"`
	Source      string    `db:"source" json:"source"`
	PublishedAt time.Time `db:"published_at" json:"published_at"`
}

// ArticleStore provides read/append access to the news articles table
type ArticleStore struct {
	q Querier
}

// NewArticleStore creates an article store
func NewArticleStore(q Querier) *ArticleStore {
	return &ArticleStore{q: q}
}

// Insert appends a new article
func (s *ArticleStore) Insert(ctx context.Context, article *Article) error {
	query := `
		INSERT INTO news_articles (id, title, content, source, published_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if article.ID == uuid.Nil {
		article.ID = uuid.New()
	}
	if article.PublishedAt.IsZero() {
		article.PublishedAt = time.Now().UTC()
	}

	_, err := s.q.Exec(ctx, query,
		article.ID,
		article.Title,
		article.Content,
		article.Source,
		article.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}

	return nil
}

// Recent returns the limit most recently published articles, newest first
func (s *ArticleStore) Recent(ctx context.Context, limit int) ([]Article, error) {
	query := `
		SELECT id, title, content, source, published_at
		FROM news_articles
		ORDER BY published_at DESC
		LIMIT $1
	`

	rows, err := s.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Source, &a.PublishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}
