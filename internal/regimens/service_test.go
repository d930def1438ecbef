package regimens

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"haircare-backend/internal/shared/storage/object/local"
)

type fakeFollowing map[string][]string

func (f fakeFollowing) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return f[userID], nil
}

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestService(t *testing.T, follows Following) *Service {
	t.Helper()
	svc := NewService(NewMemoryRepo(), local.New(t.TempDir()), follows)
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc
}

func validInput(title string) CreateInput {
	return CreateInput{
		Title: title,
		Steps: []Step{{Title: "Pre-poo with oil"}, {Title: "Co-wash"}},
	}
}

func TestCreateCleansInput(t *testing.T) {
	svc := newTestService(t, nil)
	r, err := svc.Create(context.Background(), "google:1", CreateInput{
		Title:    "  Wash day  ",
		Steps:    []Step{{Order: 7, Title: " Clarify ", Frequency: "weekly"}, {Order: 2, Title: "Deep condition"}},
		Tags:     []string{"Curly", "curly", " LOW-POO "},
		HairType: "Curly",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	wantSteps := []Step{
		{Order: 1, Title: "Clarify", Frequency: "weekly"},
		{Order: 2, Title: "Deep condition"},
	}
	if diff := cmp.Diff(wantSteps, r.Steps); diff != "" {
		t.Fatalf("steps mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"curly", "low-poo"}, r.Tags); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if r.Title != "Wash day" || r.HairType != "curly" || r.Visibility != VisibilityPublic || r.Status != StatusActive {
		t.Fatalf("unexpected regimen %+v", r)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc := newTestService(t, nil)
	manySteps := make([]Step, 31)
	for i := range manySteps {
		manySteps[i] = Step{Title: "step"}
	}
	tests := []struct {
		name string
		in   CreateInput
	}{
		{name: "blank title", in: CreateInput{Title: " ", Steps: []Step{{Title: "a"}}}},
		{name: "long title", in: CreateInput{Title: strings.Repeat("t", 121), Steps: []Step{{Title: "a"}}}},
		{name: "no steps", in: CreateInput{Title: "t"}},
		{name: "too many steps", in: CreateInput{Title: "t", Steps: manySteps}},
		{name: "blank step title", in: CreateInput{Title: "t", Steps: []Step{{Title: ""}}}},
		{name: "long notes", in: CreateInput{Title: "t", Steps: []Step{{Title: "a", Notes: strings.Repeat("n", 501)}}}},
		{name: "too many tags", in: CreateInput{Title: "t", Steps: []Step{{Title: "a"}}, Tags: strings.Split("a,b,c,d,e,f,g,h,i,j,k", ",")}},
		{name: "unknown hair type", in: CreateInput{Title: "t", Steps: []Step{{Title: "a"}}, HairType: "frizzy"}},
		{name: "bad visibility", in: CreateInput{Title: "t", Steps: []Step{{Title: "a"}}, Visibility: "friends"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), "google:1", tt.in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestPrivateAndHiddenRegimensVisibleToAuthorOnly(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	in := validInput("Private routine")
	in.Visibility = VisibilityPrivate
	private, _ := svc.Create(ctx, "google:1", in)
	hidden, _ := svc.Create(ctx, "google:1", validInput("Reported routine"))
	if err := svc.SetStatus(ctx, hidden.ID, StatusHidden); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	for _, id := range []string{private.ID, hidden.ID} {
		if _, err := svc.Get(ctx, "google:1", id); err != nil {
			t.Fatalf("author Get %s: %v", id, err)
		}
		if _, err := svc.Get(ctx, "google:2", id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for other viewer, got %v", err)
		}
	}
	items, err := svc.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty public listing, got %d", len(items))
	}
}

func TestUpdateAndDeleteRequireAuthor(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	r, _ := svc.Create(ctx, "google:1", validInput("Mine"))

	title := "Stolen"
	if _, err := svc.Update(ctx, "google:2", r.ID, UpdateInput{Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, "google:2", r.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	title = "Still mine"
	updated, err := svc.Update(ctx, "google:1", r.ID, UpdateInput{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Still mine" || len(updated.Steps) != 2 {
		t.Fatalf("unexpected update %+v", updated)
	}

	if err := svc.Delete(ctx, "google:1", r.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, "google:1", r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestLikeAndSaveAreIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	r, _ := svc.Create(ctx, "google:1", validInput("Popular"))

	for i := 0; i < 2; i++ {
		got, err := svc.Like(ctx, "google:2", r.ID)
		if err != nil {
			t.Fatalf("Like: %v", err)
		}
		if got.LikesCount != 1 || !got.Liked {
			t.Fatalf("after like %d: %+v", i, got)
		}
	}
	for i := 0; i < 2; i++ {
		got, err := svc.Unlike(ctx, "google:2", r.ID)
		if err != nil {
			t.Fatalf("Unlike: %v", err)
		}
		if got.LikesCount != 0 || got.Liked {
			t.Fatalf("after unlike %d: %+v", i, got)
		}
	}

	got, err := svc.Save(ctx, "google:3", r.ID)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got.SavesCount != 1 || !got.Saved {
		t.Fatalf("after save: %+v", got)
	}
	saved, err := svc.ListSaved(ctx, "google:3", 0, 0)
	if err != nil {
		t.Fatalf("ListSaved: %v", err)
	}
	if len(saved) != 1 || saved[0].ID != r.ID || !saved[0].Saved {
		t.Fatalf("unexpected saved list %+v", saved)
	}
	stats, err := svc.Stats(ctx, "google:3")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Saved != 1 || stats.Authored != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	older, _ := svc.Create(ctx, "google:1", CreateInput{Title: "Older", Steps: []Step{{Title: "a"}}, Tags: []string{"curly"}})
	newer, _ := svc.Create(ctx, "google:2", CreateInput{Title: "Newer", Steps: []Step{{Title: "a"}}, Tags: []string{"wavy"}})
	_, _ = svc.Like(ctx, "google:3", older.ID)

	recent, err := svc.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != newer.ID {
		t.Fatalf("expected newest first, got %+v", recent)
	}
	popular, _ := svc.List(ctx, Filter{Sort: SortPopular})
	if popular[0].ID != older.ID {
		t.Fatalf("expected most liked first, got %+v", popular)
	}
	tagged, _ := svc.List(ctx, Filter{Tag: "CURLY"})
	if len(tagged) != 1 || tagged[0].ID != older.ID {
		t.Fatalf("unexpected tag filter result %+v", tagged)
	}
	if _, err := svc.List(ctx, Filter{Sort: "oldest"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad sort, got %v", err)
	}
}

func TestFeedListsFollowedAuthors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, fakeFollowing{"google:9": {"google:1"}})
	followed, _ := svc.Create(ctx, "google:1", validInput("Followed"))
	_, _ = svc.Create(ctx, "google:2", validInput("Stranger"))

	feed, err := svc.Feed(ctx, "google:9", 0, 0)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(feed) != 1 || feed[0].ID != followed.ID {
		t.Fatalf("unexpected feed %+v", feed)
	}
	empty, err := svc.Feed(ctx, "google:8", 0, 0)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty feed, got %+v, %v", empty, err)
	}
}

func TestUploadPhotoValidatesAndReplaces(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	r, _ := svc.Create(ctx, "google:1", validInput("Photo"))

	if _, err := svc.UploadPhoto(ctx, "google:1", r.ID, "notes.txt", strings.NewReader("just text")); !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("expected ErrNotAnImage, got %v", err)
	}
	big := append(append([]byte{}, pngHeader...), make([]byte, MaxPhotoSize)...)
	if _, err := svc.UploadPhoto(ctx, "google:1", r.ID, "big.png", bytes.NewReader(big)); !errors.Is(err, ErrPhotoTooLarge) {
		t.Fatalf("expected ErrPhotoTooLarge, got %v", err)
	}
	if _, err := svc.UploadPhoto(ctx, "google:2", r.ID, "a.png", bytes.NewReader(pngHeader)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	first, err := svc.UploadPhoto(ctx, "google:1", r.ID, "first.png", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("UploadPhoto: %v", err)
	}
	second, err := svc.UploadPhoto(ctx, "google:1", r.ID, "second.png", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("UploadPhoto: %v", err)
	}
	if first.PhotoKey == second.PhotoKey {
		t.Fatalf("expected a new key, got %q twice", first.PhotoKey)
	}
	if _, err := svc.Store.Open(ctx, first.PhotoKey); err == nil {
		t.Fatalf("expected previous photo to be removed")
	}

	rc, contentType, err := svc.OpenPhoto(ctx, "google:2", r.ID)
	if err != nil {
		t.Fatalf("OpenPhoto: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if contentType != "image/png" || !bytes.Equal(body, pngHeader) {
		t.Fatalf("unexpected photo %q %q", contentType, body)
	}
}
