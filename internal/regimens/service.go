package regimens

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"haircare-backend/internal/shared/server/paging"
	"haircare-backend/internal/shared/storage/object"
	"haircare-backend/internal/shared/telemetry"
)

// MaxPhotoSize bounds regimen photo uploads.
const MaxPhotoSize = 5 << 20

// Following lists the authors a user follows, for the feed.
type Following interface {
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
}

// Service holds regimen business rules on top of Repo.
type Service struct {
	Repo    Repo
	Store   object.Store
	Follows Following
	now     func() time.Time
}

func NewService(repo Repo, store object.Store, follows Following) *Service {
	return &Service{
		Repo:    repo,
		Store:   store,
		Follows: follows,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, authorID string, in CreateInput) (Regimen, error) {
	title, err := cleanTitle(in.Title)
	if err != nil {
		return Regimen{}, err
	}
	desc, err := cleanDescription(in.Description)
	if err != nil {
		return Regimen{}, err
	}
	steps, err := cleanSteps(in.Steps)
	if err != nil {
		return Regimen{}, err
	}
	tags, err := cleanTags(in.Tags)
	if err != nil {
		return Regimen{}, err
	}
	hairType, err := cleanHairType(in.HairType)
	if err != nil {
		return Regimen{}, err
	}
	visibility, err := cleanVisibility(in.Visibility)
	if err != nil {
		return Regimen{}, err
	}

	now := s.now()
	r := Regimen{
		ID:          uuid.NewString(),
		AuthorID:    authorID,
		Title:       title,
		Description: desc,
		Steps:       steps,
		Tags:        tags,
		HairType:    hairType,
		Visibility:  visibility,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, r); err != nil {
		return Regimen{}, err
	}
	telemetry.Info("regimens.created", map[string]any{"regimen_id": r.ID, "user_id": authorID, "steps": len(steps)})
	return r, nil
}

// Get returns a regimen the viewer may see, with the viewer's like and save flags.
func (s *Service) Get(ctx context.Context, viewerID, id string) (Regimen, error) {
	r, err := s.visible(ctx, viewerID, id)
	if err != nil {
		return Regimen{}, err
	}
	if viewerID != "" {
		r.Liked, r.Saved, err = s.Repo.ViewerState(ctx, id, viewerID)
		if err != nil {
			return Regimen{}, err
		}
	}
	return r, nil
}

func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (Regimen, error) {
	r, err := s.owned(ctx, userID, id)
	if err != nil {
		return Regimen{}, err
	}
	if in.Title != nil {
		if r.Title, err = cleanTitle(*in.Title); err != nil {
			return Regimen{}, err
		}
	}
	if in.Description != nil {
		if r.Description, err = cleanDescription(*in.Description); err != nil {
			return Regimen{}, err
		}
	}
	if in.Steps != nil {
		if r.Steps, err = cleanSteps(*in.Steps); err != nil {
			return Regimen{}, err
		}
	}
	if in.Tags != nil {
		if r.Tags, err = cleanTags(*in.Tags); err != nil {
			return Regimen{}, err
		}
	}
	if in.HairType != nil {
		if r.HairType, err = cleanHairType(*in.HairType); err != nil {
			return Regimen{}, err
		}
	}
	if in.Visibility != nil {
		if r.Visibility, err = cleanVisibility(*in.Visibility); err != nil {
			return Regimen{}, err
		}
	}
	r.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, r); err != nil {
		return Regimen{}, err
	}
	return r, nil
}

// Delete soft-deletes a regimen. Only the author may delete it.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.Repo.SoftDelete(ctx, id, s.now()); err != nil {
		return err
	}
	telemetry.Info("regimens.deleted", map[string]any{"regimen_id": id, "user_id": userID})
	return nil
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Regimen, error) {
	window := paging.Clamp(filter.Limit, filter.Offset)
	filter.Limit, filter.Offset = window.Limit, window.Offset
	filter.Tag = strings.ToLower(strings.TrimSpace(filter.Tag))
	hairType, err := cleanHairType(filter.HairType)
	if err != nil {
		return nil, err
	}
	filter.HairType = hairType
	switch filter.Sort {
	case SortRecent, SortPopular:
	case "":
		filter.Sort = SortRecent
	default:
		return nil, invalid("sort must be recent or popular")
	}
	return s.Repo.List(ctx, filter)
}

// Feed lists recent public regimens by authors the user follows.
func (s *Service) Feed(ctx context.Context, userID string, limit, offset int) ([]Regimen, error) {
	if s.Follows == nil {
		return []Regimen{}, nil
	}
	ids, err := s.Follows.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load following: %w", err)
	}
	if len(ids) == 0 {
		return []Regimen{}, nil
	}
	return s.List(ctx, Filter{AuthorIDs: ids, Sort: SortRecent, Limit: limit, Offset: offset})
}

func (s *Service) ListSaved(ctx context.Context, userID string, limit, offset int) ([]Regimen, error) {
	window := paging.Clamp(limit, offset)
	return s.Repo.ListSaved(ctx, userID, window.Limit, window.Offset)
}

func (s *Service) Like(ctx context.Context, userID, id string) (Regimen, error) {
	return s.setRelation(ctx, userID, id, s.Repo.SetLiked, true)
}

func (s *Service) Unlike(ctx context.Context, userID, id string) (Regimen, error) {
	return s.setRelation(ctx, userID, id, s.Repo.SetLiked, false)
}

func (s *Service) Save(ctx context.Context, userID, id string) (Regimen, error) {
	return s.setRelation(ctx, userID, id, s.Repo.SetSaved, true)
}

func (s *Service) Unsave(ctx context.Context, userID, id string) (Regimen, error) {
	return s.setRelation(ctx, userID, id, s.Repo.SetSaved, false)
}

type setFunc func(ctx context.Context, regimenID, userID string, on bool) (bool, error)

func (s *Service) setRelation(ctx context.Context, userID, id string, set setFunc, on bool) (Regimen, error) {
	if _, err := s.visible(ctx, userID, id); err != nil {
		return Regimen{}, err
	}
	if _, err := set(ctx, id, userID, on); err != nil {
		return Regimen{}, err
	}
	return s.Get(ctx, userID, id)
}

// UploadPhoto stores an image for the regimen and replaces any previous photo.
func (s *Service) UploadPhoto(ctx context.Context, userID, id, fileName string, body io.Reader) (Regimen, error) {
	if s.Store == nil {
		return Regimen{}, errors.New("photo storage not configured")
	}
	r, err := s.owned(ctx, userID, id)
	if err != nil {
		return Regimen{}, err
	}

	limited := bufio.NewReader(io.LimitReader(body, MaxPhotoSize+1))
	head, err := limited.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) {
		return Regimen{}, fmt.Errorf("read photo: %w", err)
	}
	if len(head) == 0 || !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return Regimen{}, ErrNotAnImage
	}

	obj, err := s.Store.Put(ctx, "regimens/"+r.ID, fileName, limited)
	if err != nil {
		return Regimen{}, fmt.Errorf("store photo: %w", err)
	}
	if obj.Size > MaxPhotoSize {
		_ = s.Store.Delete(ctx, obj.Key)
		return Regimen{}, ErrPhotoTooLarge
	}

	previous := r.PhotoKey
	r.PhotoKey = obj.Key
	r.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, r); err != nil {
		_ = s.Store.Delete(ctx, obj.Key)
		return Regimen{}, err
	}
	if previous != "" {
		if err := s.Store.Delete(ctx, previous); err != nil {
			telemetry.Warn("regimens.photo_cleanup_failed", map[string]any{"regimen_id": r.ID, "key": previous, "error": err})
		}
	}
	return r, nil
}

// OpenPhoto opens the regimen's photo for a viewer who may see the regimen.
func (s *Service) OpenPhoto(ctx context.Context, viewerID, id string) (io.ReadCloser, string, error) {
	r, err := s.visible(ctx, viewerID, id)
	if err != nil {
		return nil, "", err
	}
	if r.PhotoKey == "" || s.Store == nil {
		return nil, "", ErrNotFound
	}
	rc, err := s.Store.Open(ctx, r.PhotoKey)
	if err != nil {
		return nil, "", err
	}
	return rc, photoContentType(r.PhotoKey), nil
}

// SetStatus changes moderation status without an ownership check.
func (s *Service) SetStatus(ctx context.Context, id, status string) error {
	if status != StatusActive && status != StatusHidden {
		return invalid("status must be active or hidden")
	}
	return s.Repo.SetStatus(ctx, id, status)
}

// Hide marks a regimen hidden for moderation. changed is false when it was
// already hidden.
func (s *Service) Hide(ctx context.Context, id string) (bool, error) {
	r, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if r.Status == StatusHidden {
		return false, nil
	}
	if err := s.Repo.SetStatus(ctx, id, StatusHidden); err != nil {
		return false, err
	}
	return true, nil
}

// Visible reports whether viewerID may read the regimen.
func (s *Service) Visible(ctx context.Context, viewerID, id string) (Regimen, error) {
	return s.visible(ctx, viewerID, id)
}

func (s *Service) AdjustComments(ctx context.Context, id string, delta int) error {
	return s.Repo.AdjustComments(ctx, id, delta)
}

func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	return s.Repo.Stats(ctx, userID)
}

func (s *Service) visible(ctx context.Context, viewerID, id string) (Regimen, error) {
	r, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Regimen{}, err
	}
	if !r.VisibleTo(viewerID) {
		return Regimen{}, ErrNotFound
	}
	return r, nil
}

func (s *Service) owned(ctx context.Context, userID, id string) (Regimen, error) {
	r, err := s.visible(ctx, userID, id)
	if err != nil {
		return Regimen{}, err
	}
	if r.AuthorID != userID {
		return Regimen{}, ErrForbidden
	}
	return r, nil
}

func photoContentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
