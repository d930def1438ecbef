package recommendations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"haircare-backend/internal/ingredients"
	"haircare-backend/internal/productfilter"
	"haircare-backend/internal/products"
	"haircare-backend/internal/quiz"
	"haircare-backend/internal/shared/metrics"
	"haircare-backend/internal/shared/telemetry"
	"haircare-backend/internal/shared/util"
)

const candidateLimit = 500

// Catalog supplies products to score.
type Catalog interface {
	Candidates(ctx context.Context, categories []string, limit int) ([]products.Product, error)
}

// QuizSource returns a user's stored quiz answers, nil when none were saved.
type QuizSource interface {
	Quiz(ctx context.Context, userID string) (*quiz.Answers, error)
}

// Service produces and stores recommendation runs.
type Service struct {
	Catalog    Catalog
	Quizzes    QuizSource
	Translator *ingredients.Translator
	Reranker   *Reranker
	Repo       Repo
	now        func() time.Time
}

// NewService wires a Service. reranker may be nil to disable AI re-ranking.
func NewService(catalog Catalog, quizzes QuizSource, translator *ingredients.Translator, reranker *Reranker, repo Repo) *Service {
	return &Service{
		Catalog:    catalog,
		Quizzes:    quizzes,
		Translator: translator,
		Reranker:   reranker,
		Repo:       repo,
		now:        time.Now,
	}
}

// Recommend scores the catalog for userID and stores the run as the user's latest.
func (s *Service) Recommend(ctx context.Context, userID string, req Request) (Result, error) {
	if strings.TrimSpace(userID) == "" {
		return Result{}, fmt.Errorf("%w: user is required", ErrInvalidInput)
	}
	limit, err := normalizeLimit(req.Limit)
	if err != nil {
		return Result{}, err
	}
	categories := util.NormalizeList(req.Categories)
	for _, c := range categories {
		if !util.Contains(products.Categories, c) {
			return Result{}, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, c)
		}
	}

	answers, candidates, err := s.loadInputs(ctx, userID, req.Answers, categories)
	if err != nil {
		return Result{}, err
	}
	answers = answers.Normalize()
	if err := answers.Validate(); err != nil {
		return Result{}, err
	}

	profile := s.Translator.Translate(answers)
	filtered := productfilter.Apply(candidates, profile, productfilter.Criteria{
		HairType:   answers.HairType,
		Categories: categories,
	})
	items := Rank(filtered, profile, answers, limit)

	result := Result{
		ID:         uuid.NewString(),
		UserID:     userID,
		Answers:    answers,
		Recommend:  profile.Recommended,
		Avoid:      profile.Avoid,
		Items:      items,
		Considered: len(candidates),
		Filtered:   len(candidates) - len(filtered),
		CreatedAt:  s.now().UTC(),
	}

	if s.shouldRerank(req, items) {
		ordered, summary, err := s.Reranker.Rerank(ctx, answers, items)
		if err != nil {
			metrics.IncRecommendationsAIFallback()
			telemetry.Warn("recommendations.rerank_fallback", map[string]any{
				"user_id": userID,
				"error":   err,
			})
		} else {
			result.Items = ordered
			result.Summary = summary
			result.AIRanked = true
		}
	}

	if err := s.Repo.Save(ctx, result); err != nil {
		return Result{}, fmt.Errorf("save recommendation run: %w", err)
	}
	metrics.IncRecommendationsGenerated()
	telemetry.Info("recommendations.generated", map[string]any{
		"user_id":    userID,
		"items":      len(result.Items),
		"considered": result.Considered,
		"ai_ranked":  result.AIRanked,
	})
	return result, nil
}

// Latest returns the user's most recent run.
func (s *Service) Latest(ctx context.Context, userID string) (Result, error) {
	if strings.TrimSpace(userID) == "" {
		return Result{}, ErrNotFound
	}
	return s.Repo.Latest(ctx, userID)
}

// loadInputs fetches stored answers and catalog candidates concurrently.
func (s *Service) loadInputs(ctx context.Context, userID string, provided *quiz.Answers, categories []string) (quiz.Answers, []products.Product, error) {
	var (
		stored     *quiz.Answers
		candidates []products.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	if provided == nil {
		g.Go(func() error {
			if s.Quizzes == nil {
				return nil
			}
			a, err := s.Quizzes.Quiz(gctx, userID)
			if err != nil {
				return fmt.Errorf("load stored quiz: %w", err)
			}
			stored = a
			return nil
		})
	}
	g.Go(func() error {
		items, err := s.Catalog.Candidates(gctx, categories, candidateLimit)
		if err != nil {
			return fmt.Errorf("load candidates: %w", err)
		}
		candidates = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return quiz.Answers{}, nil, err
	}

	switch {
	case provided != nil:
		return *provided, candidates, nil
	case stored != nil:
		return *stored, candidates, nil
	default:
		return quiz.Answers{}, nil, ErrQuizRequired
	}
}

func (s *Service) shouldRerank(req Request, items []Item) bool {
	if s.Reranker == nil || len(items) == 0 {
		return false
	}
	return req.Rerank == nil || *req.Rerank
}

func normalizeLimit(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, fmt.Errorf("%w: limit must be positive", ErrInvalidInput)
	case limit == 0:
		return DefaultLimit, nil
	case limit > MaxLimit:
		return MaxLimit, nil
	default:
		return limit, nil
	}
}

// IsInputError reports whether err came from request validation.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, quiz.ErrInvalidAnswers)
}
