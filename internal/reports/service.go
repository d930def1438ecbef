package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"haircare-backend/internal/comments"
	"haircare-backend/internal/queue"
	"haircare-backend/internal/regimens"
	"haircare-backend/internal/shared/metrics"
	"haircare-backend/internal/shared/telemetry"
	"haircare-backend/internal/shared/util"
)

// RegimenTargets is the part of the regimen service moderation uses.
type RegimenTargets interface {
	Visible(ctx context.Context, viewerID, id string) (regimens.Regimen, error)
	Hide(ctx context.Context, id string) (bool, error)
}

// CommentTargets is the part of the comment service moderation uses.
type CommentTargets interface {
	Get(ctx context.Context, id string) (comments.Comment, error)
	Hide(ctx context.Context, id string) (bool, error)
}

type Service struct {
	Repo      Repo
	Regimens  RegimenTargets
	Comments  CommentTargets
	Queue     queue.Client
	Threshold int
	now       func() time.Time
}

// NewService constructs a Service. A nil queue runs moderation inline.
func NewService(repo Repo, regs RegimenTargets, cmts CommentTargets, q queue.Client, threshold int) *Service {
	if threshold <= 0 {
		threshold = DefaultHideThreshold
	}
	return &Service{
		Repo:      repo,
		Regimens:  regs,
		Comments:  cmts,
		Queue:     q,
		Threshold: threshold,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create files a report. A repeat report by the same user returns the
// original with created=false and does not trigger moderation again.
func (s *Service) Create(ctx context.Context, reporterID string, in Input) (Report, bool, error) {
	r, err := s.clean(reporterID, in)
	if err != nil {
		return Report{}, false, err
	}
	if err := s.checkTarget(ctx, reporterID, r.TargetType, r.TargetID); err != nil {
		return Report{}, false, err
	}

	stored, created, err := s.Repo.Create(ctx, r)
	if err != nil {
		return Report{}, false, err
	}
	if !created {
		return stored, false, nil
	}
	metrics.IncReportsCreated()
	telemetry.Info("reports.created", map[string]any{
		"report_id":   stored.ID,
		"user_id":     reporterID,
		"target_type": stored.TargetType,
		"target_id":   stored.TargetID,
		"reason":      stored.Reason,
	})
	s.dispatch(ctx, stored)
	return stored, true, nil
}

// Review hides the target once distinct reports reach the threshold.
func (s *Service) Review(ctx context.Context, targetType, targetID string) (bool, error) {
	count, err := s.Repo.CountForTarget(ctx, targetType, targetID)
	if err != nil {
		return false, fmt.Errorf("count reports: %w", err)
	}
	if count < s.Threshold {
		return false, nil
	}

	var changed bool
	switch targetType {
	case TargetRegimen:
		changed, err = s.Regimens.Hide(ctx, targetID)
	case TargetComment:
		changed, err = s.Comments.Hide(ctx, targetID)
	default:
		return false, fmt.Errorf("%w: unknown target type %q", ErrInvalidInput, targetType)
	}
	if errors.Is(err, regimens.ErrNotFound) || errors.Is(err, comments.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("hide %s: %w", targetType, err)
	}
	if changed {
		metrics.IncModerationHidden()
		telemetry.Info("moderation.hidden", map[string]any{"target_type": targetType, "target_id": targetID, "reports": count})
	}
	return changed, nil
}

func (s *Service) dispatch(ctx context.Context, r Report) {
	if s.Queue != nil {
		err := s.Queue.Send(ctx, queue.Message{
			Kind:       queue.KindReport,
			TargetType: r.TargetType,
			TargetID:   r.TargetID,
			ReportID:   r.ID,
			RequestID:  requestIDFromContext(ctx),
			EnqueuedAt: s.now().Format(time.RFC3339),
			Version:    1,
		})
		if err == nil {
			return
		}
		telemetry.Warn("reports.enqueue_failed", map[string]any{"report_id": r.ID, "error": err})
	}
	if _, err := s.Review(ctx, r.TargetType, r.TargetID); err != nil {
		telemetry.Error("moderation.review_failed", map[string]any{"report_id": r.ID, "error": err})
	}
}

func (s *Service) clean(reporterID string, in Input) (Report, error) {
	targetType := strings.ToLower(strings.TrimSpace(in.TargetType))
	if targetType != TargetRegimen && targetType != TargetComment {
		return Report{}, fmt.Errorf("%w: targetType must be regimen or comment", ErrInvalidInput)
	}
	targetID := strings.TrimSpace(in.TargetID)
	if targetID == "" {
		return Report{}, fmt.Errorf("%w: targetId is required", ErrInvalidInput)
	}
	reason := strings.ToLower(strings.TrimSpace(in.Reason))
	if !util.Contains(Reasons, reason) {
		return Report{}, fmt.Errorf("%w: reason must be one of %s", ErrInvalidInput, strings.Join(Reasons, "|"))
	}
	details := strings.TrimSpace(in.Details)
	if utf8.RuneCountInString(details) > maxDetails {
		return Report{}, fmt.Errorf("%w: details must be at most %d characters", ErrInvalidInput, maxDetails)
	}
	return Report{
		ID:         uuid.NewString(),
		ReporterID: reporterID,
		TargetType: targetType,
		TargetID:   targetID,
		Reason:     reason,
		Details:    details,
		CreatedAt:  s.now(),
	}, nil
}

func (s *Service) checkTarget(ctx context.Context, reporterID, targetType, targetID string) error {
	var err error
	switch targetType {
	case TargetRegimen:
		_, err = s.Regimens.Visible(ctx, reporterID, targetID)
	case TargetComment:
		var c comments.Comment
		c, err = s.Comments.Get(ctx, targetID)
		if err == nil && c.Status != comments.StatusActive {
			err = comments.ErrNotFound
		}
	}
	if errors.Is(err, regimens.ErrNotFound) || errors.Is(err, comments.ErrNotFound) {
		return ErrTargetNotFound
	}
	return err
}

type requestIDKey struct{}

// WithRequestID tags ctx so queued jobs can be correlated with the request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
