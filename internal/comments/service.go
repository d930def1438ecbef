package comments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"haircare-backend/internal/regimens"
	"haircare-backend/internal/shared/server/paging"
	"haircare-backend/internal/shared/telemetry"
)

// Regimens is the part of the regimen service comments depend on.
type Regimens interface {
	Visible(ctx context.Context, viewerID, id string) (regimens.Regimen, error)
	AdjustComments(ctx context.Context, id string, delta int) error
}

type Service struct {
	Repo     Repo
	Regimens Regimens
	now      func() time.Time
}

func NewService(repo Repo, regs Regimens) *Service {
	return &Service{Repo: repo, Regimens: regs, now: func() time.Time { return time.Now().UTC() }}
}

// Create adds a comment to a regimen the author can see.
func (s *Service) Create(ctx context.Context, authorID, regimenID, content string) (Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > maxContent {
		return Comment{}, fmt.Errorf("%w: content must be 1-%d characters", ErrInvalidInput, maxContent)
	}
	if _, err := s.Regimens.Visible(ctx, authorID, regimenID); err != nil {
		return Comment{}, err
	}
	c := Comment{
		ID:        uuid.NewString(),
		RegimenID: regimenID,
		AuthorID:  authorID,
		Content:   content,
		Status:    StatusActive,
		CreatedAt: s.now(),
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return Comment{}, err
	}
	s.adjust(ctx, regimenID, 1)
	return c, nil
}

// List returns visible comments on a regimen, oldest first.
func (s *Service) List(ctx context.Context, viewerID, regimenID string, limit, offset int) ([]Comment, error) {
	if _, err := s.Regimens.Visible(ctx, viewerID, regimenID); err != nil {
		return nil, err
	}
	window := paging.Clamp(limit, offset)
	return s.Repo.List(ctx, regimenID, window.Limit, window.Offset)
}

// Delete soft-deletes a comment. The comment author and the regimen author may delete.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	c, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.AuthorID != userID {
		r, err := s.Regimens.Visible(ctx, userID, c.RegimenID)
		if errors.Is(err, regimens.ErrNotFound) || (err == nil && r.AuthorID != userID) {
			return ErrForbidden
		}
		if err != nil {
			return err
		}
	}
	if err := s.Repo.SoftDelete(ctx, id, s.now()); err != nil {
		return err
	}
	if c.Status == StatusActive {
		s.adjust(ctx, c.RegimenID, -1)
	}
	return nil
}

// Get returns a comment, including hidden ones.
func (s *Service) Get(ctx context.Context, id string) (Comment, error) {
	return s.Repo.GetByID(ctx, id)
}

// SetStatus is used by moderation. Hidden comments drop out of the regimen's count.
func (s *Service) SetStatus(ctx context.Context, id, status string) error {
	_, err := s.setStatus(ctx, id, status)
	return err
}

// Hide marks a comment hidden. changed is false when it was already hidden.
func (s *Service) Hide(ctx context.Context, id string) (bool, error) {
	return s.setStatus(ctx, id, StatusHidden)
}

func (s *Service) setStatus(ctx context.Context, id, status string) (bool, error) {
	if status != StatusActive && status != StatusHidden {
		return false, fmt.Errorf("%w: status must be active or hidden", ErrInvalidInput)
	}
	c, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if c.Status == status {
		return false, nil
	}
	if err := s.Repo.SetStatus(ctx, id, status); err != nil {
		return false, err
	}
	if status == StatusHidden {
		s.adjust(ctx, c.RegimenID, -1)
	} else {
		s.adjust(ctx, c.RegimenID, 1)
	}
	return true, nil
}

// adjust keeps the regimen's counter in step. A failed update is logged; the
// comment itself is already stored.
func (s *Service) adjust(ctx context.Context, regimenID string, delta int) {
	if err := s.Regimens.AdjustComments(ctx, regimenID, delta); err != nil {
		telemetry.Warn("comments.count_update_failed", map[string]any{"regimen_id": regimenID, "delta": delta, "error": err})
	}
}
