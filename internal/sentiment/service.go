package sentiment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quantfolio/quantfolio/internal/db"
)

// Default parameters for an ingestion batch
const (
	DefaultReportLimit  = 5
	DefaultSummaryWidth = 150
)

// ArticleSource reads raw articles awaiting classification
type ArticleSource interface {
	Recent(ctx context.Context, limit int) ([]db.Article, error)
}

// ReportSink persists classified sentiment reports
type ReportSink interface {
	Insert(ctx context.Context, report *db.SentimentReport) error
}

// Service runs the sentiment ingestion step: summarize recent articles,
// classify the summaries, and persist one report per article.
type Service struct {
	articles   ArticleSource
	reports    ReportSink
	classifier *Classifier
	log        zerolog.Logger
}

// NewService creates a sentiment ingestion service
func NewService(articles ArticleSource, reports ReportSink, classifier *Classifier, logger zerolog.Logger) *Service {
	if classifier == nil {
		classifier = NewClassifier(nil)
	}
	return &Service{
		articles:   articles,
		reports:    reports,
		classifier: classifier,
		log:        logger,
	}
}

// GenerateReports classifies the limit most recent articles and persists the
// resulting reports. Reports are recomputed per batch, never retroactively
// corrected. On a persistence failure the reports generated so far are still
// returned together with a PersistenceError carrying the committed row count.
func (s *Service) GenerateReports(ctx context.Context, limit int) ([]db.SentimentReport, error) {
	if limit <= 0 {
		limit = DefaultReportLimit
	}

	articles, err := s.articles.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("article source: %w", err)
	}

	reports := make([]db.SentimentReport, 0, len(articles))
	for i, article := range articles {
		summary := Summarize(article.Content, DefaultSummaryWidth)
		label, polarity := s.classifier.Classify(summary)

		report := db.SentimentReport{
			ArticleID: article.ID,
			Title:     article.Title,
			Summary:   summary,
			Polarity:  polarity,
			Label:     label,
		}

		if err := s.reports.Insert(ctx, &report); err != nil {
			return reports, &db.PersistenceError{Entity: "sentiment_reports", Committed: i, Err: err}
		}
		reports = append(reports, report)

		s.log.Debug().
			Str("article_id", article.ID.String()).
			Str("label", label).
			Float64("polarity", polarity).
			Msg("Sentiment report generated")
	}

	s.log.Info().Int("reports", len(reports)).Msg("Sentiment ingestion batch complete")
	return reports, nil
}
