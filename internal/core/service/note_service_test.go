package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/notedrop/notes-api/internal/core/domain"
	"github.com/notedrop/notes-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubNoteRepo struct {
	byCode          map[string]*domain.Note
	nextID          int
	createErr       error // if set, Create returns this error
	createCalls     int
	deactivateCalls int
}

func newStubNoteRepo() *stubNoteRepo {
	return &stubNoteRepo{byCode: make(map[string]*domain.Note)}
}

func (r *stubNoteRepo) Create(_ context.Context, n *domain.Note) error {
	r.createCalls++
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.byCode[n.Code]; exists {
		return domain.ErrCodeTaken
	}
	r.nextID++
	n.ID = fmt.Sprintf("note_%d", r.nextID)
	clone := *n
	r.byCode[n.Code] = &clone
	return nil
}

func (r *stubNoteRepo) FindByCode(_ context.Context, code string) (*domain.Note, error) {
	n, ok := r.byCode[code]
	if !ok {
		return nil, domain.ErrNoteNotFound
	}
	clone := *n
	return &clone, nil
}

func (r *stubNoteRepo) FindByID(_ context.Context, id string) (*domain.Note, error) {
	for _, n := range r.byCode {
		if n.ID == id {
			clone := *n
			return &clone, nil
		}
	}
	return nil, domain.ErrNoteNotFound
}

func (r *stubNoteRepo) List(_ context.Context, createdBy string) ([]*domain.Note, error) {
	var out []*domain.Note
	for _, n := range r.byCode {
		if createdBy != "" && n.CreatedBy != createdBy {
			continue
		}
		clone := *n
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubNoteRepo) UpdateContent(_ context.Context, id string, content string) error {
	for _, n := range r.byCode {
		if n.ID == id {
			n.Content = content
			return nil
		}
	}
	return domain.ErrNoteNotFound
}

func (r *stubNoteRepo) Delete(_ context.Context, id string) error {
	for code, n := range r.byCode {
		if n.ID == id {
			delete(r.byCode, code)
			return nil
		}
	}
	return domain.ErrNoteNotFound
}

func (r *stubNoteRepo) Deactivate(_ context.Context, code string) error {
	r.deactivateCalls++
	if n, ok := r.byCode[code]; ok {
		n.Active = false
	}
	return nil
}

func (r *stubNoteRepo) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for _, n := range r.byCode {
		if n.Active && now.Sub(n.CreatedAt) > domain.NoteTTL {
			n.Active = false
			count++
		}
	}
	return count, nil
}

// fixedCodeGen returns a canned sequence of codes, then falls back to a real
// generator. Used to force collisions deterministically.
type fixedCodeGen struct {
	codes []string
	next  int
}

func (g *fixedCodeGen) Generate() string {
	if g.next < len(g.codes) {
		c := g.codes[g.next]
		g.next++
		return c
	}
	return NewShareCodeGenerator(nil).Generate()
}

var discardLogger = zerolog.Nop()

func seededService(repo *stubNoteRepo) *NoteService {
	gen := NewShareCodeGenerator(rand.New(rand.NewPCG(1, 2)))
	return NewNoteService(repo, nil, gen, discardLogger)
}

// ---------------------------------------------------------------------------
// Share
// ---------------------------------------------------------------------------

func TestNoteService_Share_Success(t *testing.T) {
	repo := newStubNoteRepo()
	svc := seededService(repo)

	result, err := svc.Share(context.Background(), ports.ShareNoteInput{Content: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Code) != 7 || result.Code[3] != '-' {
		t.Errorf("code format wrong: %q", result.Code)
	}
	if result.ID == "" {
		t.Error("expected note id to be assigned")
	}
	if repo.createCalls != 1 {
		t.Errorf("expected exactly 1 write, got %d", repo.createCalls)
	}

	stored := repo.byCode[result.Code]
	if stored == nil {
		t.Fatal("note not persisted under its code")
	}
	if !stored.Active {
		t.Error("new note must start active")
	}
	if stored.Content != "hello" {
		t.Errorf("content = %q, want %q", stored.Content, "hello")
	}
	if got := stored.ExpiresAt.Sub(stored.CreatedAt); got != domain.NoteTTL {
		t.Errorf("expiry window = %v, want %v", got, domain.NoteTTL)
	}
}

func TestNoteService_Share_RetriesOnCollision(t *testing.T) {
	repo := newStubNoteRepo()
	taken := &domain.Note{ID: "note_0", Code: "AAA-AAA", Active: true, CreatedAt: time.Now().UTC()}
	repo.byCode[taken.Code] = taken

	gen := &fixedCodeGen{codes: []string{"AAA-AAA", "BBB-BBB"}}
	svc := NewNoteService(repo, nil, gen, discardLogger)

	result, err := svc.Share(context.Background(), ports.ShareNoteInput{Content: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Code != "BBB-BBB" {
		t.Errorf("expected second candidate after collision, got %q", result.Code)
	}
	// The collided probe must not have written anything.
	if repo.createCalls != 1 {
		t.Errorf("expected 1 write, got %d", repo.createCalls)
	}
}

func TestNoteService_Share_CodeSpaceExhausted(t *testing.T) {
	repo := newStubNoteRepo()
	taken := &domain.Note{ID: "note_0", Code: "ZZZ-ZZZ", Active: true, CreatedAt: time.Now().UTC()}
	repo.byCode[taken.Code] = taken

	collide := make([]string, maxCodeAttempts)
	for i := range collide {
		collide[i] = "ZZZ-ZZZ"
	}
	svc := NewNoteService(repo, nil, &fixedCodeGen{codes: collide}, discardLogger)

	_, err := svc.Share(context.Background(), ports.ShareNoteInput{Content: "x"})
	if !errors.Is(err, domain.ErrCodeSpaceExhausted) {
		t.Fatalf("expected ErrCodeSpaceExhausted, got %v", err)
	}
	if repo.createCalls != 0 {
		t.Errorf("exhausted probes must cause no writes, got %d", repo.createCalls)
	}
}

// racingRepo simulates a concurrent writer: the probe reports "not found"
// for the first hideProbe lookups even though the code exists, so Create
// loses against the unique index.
type racingRepo struct {
	*stubNoteRepo
	hideProbe int
}

func (r *racingRepo) FindByCode(ctx context.Context, code string) (*domain.Note, error) {
	if r.hideProbe > 0 {
		r.hideProbe--
		return nil, domain.ErrNoteNotFound
	}
	return r.stubNoteRepo.FindByCode(ctx, code)
}

func TestNoteService_Share_InsertRaceCountsAsAttempt(t *testing.T) {
	inner := newStubNoteRepo()
	taken := &domain.Note{ID: "note_0", Code: "CCC-CCC", Active: true, CreatedAt: time.Now().UTC()}
	inner.byCode[taken.Code] = taken

	repo := &racingRepo{stubNoteRepo: inner, hideProbe: 1}
	svc := NewNoteService(repo, nil, &fixedCodeGen{codes: []string{"CCC-CCC", "DDD-DDD"}}, discardLogger)

	// The probe for CCC-CCC misses, the insert hits the unique index, and the
	// service regenerates instead of failing.
	result, err := svc.Share(context.Background(), ports.ShareNoteInput{Content: "b"})
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}
	if result.Code != "DDD-DDD" {
		t.Errorf("expected DDD-DDD after losing the insert race, got %q", result.Code)
	}
}

func TestNoteService_Share_TenNotesGetDistinctCodes(t *testing.T) {
	repo := newStubNoteRepo()
	svc := seededService(repo)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		result, err := svc.Share(context.Background(), ports.ShareNoteInput{Content: "n"})
		if err != nil {
			t.Fatalf("share %d failed: %v", i, err)
		}
		if seen[result.Code] {
			t.Fatalf("duplicate code issued: %q", result.Code)
		}
		seen[result.Code] = true
	}
}

func TestNoteService_Share_StoresOwner(t *testing.T) {
	repo := newStubNoteRepo()
	svc := seededService(repo)

	result, err := svc.Share(context.Background(), ports.ShareNoteInput{Content: "x", UserID: "user_7"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.byCode[result.Code].CreatedBy != "user_7" {
		t.Errorf("owner not stored")
	}
}

// ---------------------------------------------------------------------------
// Retrieve
// ---------------------------------------------------------------------------

func activeNote(code, content string, age time.Duration) *domain.Note {
	created := time.Now().UTC().Add(-age)
	return &domain.Note{
		ID:        "note_" + code,
		Content:   content,
		Code:      code,
		Active:    true,
		CreatedAt: created,
		ExpiresAt: created.Add(domain.NoteTTL),
	}
}

func TestNoteService_Retrieve_Success(t *testing.T) {
	repo := newStubNoteRepo()
	repo.byCode["abc-def"] = activeNote("abc-def", "the content", time.Hour)
	svc := seededService(repo)

	result, err := svc.Retrieve(context.Background(), "abc-def")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "the content" || result.Code != "abc-def" {
		t.Errorf("unexpected projection: %+v", result)
	}
}

func TestNoteService_Retrieve_UnknownCode(t *testing.T) {
	repo := newStubNoteRepo()
	svc := seededService(repo)

	_, err := svc.Retrieve(context.Background(), "nope-no")
	if !errors.Is(err, domain.ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
}

func TestNoteService_Retrieve_ExpiredDeactivatesLazily(t *testing.T) {
	repo := newStubNoteRepo()
	repo.byCode["old-one"] = activeNote("old-one", "stale", 25*time.Hour)
	svc := seededService(repo)

	_, err := svc.Retrieve(context.Background(), "old-one")
	if !errors.Is(err, domain.ErrNoteExpired) {
		t.Fatalf("expected ErrNoteExpired, got %v", err)
	}
	if repo.byCode["old-one"].Active {
		t.Error("expired note must be deactivated on first late read")
	}
	if repo.deactivateCalls != 1 {
		t.Errorf("expected 1 deactivation write, got %d", repo.deactivateCalls)
	}
}

func TestNoteService_Retrieve_RepeatedLateReadsDoNotRewrite(t *testing.T) {
	repo := newStubNoteRepo()
	repo.byCode["old-two"] = activeNote("old-two", "stale", 25*time.Hour)
	svc := seededService(repo)

	_, _ = svc.Retrieve(context.Background(), "old-two")
	_, err := svc.Retrieve(context.Background(), "old-two")

	// Second late read still reports expired, but performs no further write.
	if !errors.Is(err, domain.ErrNoteExpired) {
		t.Fatalf("expected ErrNoteExpired on repeat, got %v", err)
	}
	if repo.deactivateCalls != 1 {
		t.Errorf("lazy deactivation must be idempotent: %d writes", repo.deactivateCalls)
	}
}

func TestNoteService_Retrieve_InactiveWithinLifetimeIsGone(t *testing.T) {
	repo := newStubNoteRepo()
	n := activeNote("gone-yet", "withdrawn", time.Hour)
	n.Active = false
	repo.byCode["gone-yet"] = n
	svc := seededService(repo)

	_, err := svc.Retrieve(context.Background(), "gone-yet")
	if !errors.Is(err, domain.ErrNoteGone) {
		t.Fatalf("expected ErrNoteGone, got %v", err)
	}
}

func TestNoteService_Retrieve_JustUnderLifetimeStillReadable(t *testing.T) {
	repo := newStubNoteRepo()
	repo.byCode["on-edge"] = activeNote("on-edge", "still here", domain.NoteTTL-time.Minute)
	svc := seededService(repo)

	result, err := svc.Retrieve(context.Background(), "on-edge")
	if err != nil {
		t.Fatalf("note just under the lifetime must be readable: %v", err)
	}
	if result.Content != "still here" {
		t.Errorf("unexpected content: %q", result.Content)
	}
}

func TestNoteExpired_BoundaryIsStrict(t *testing.T) {
	now := time.Now().UTC()
	n := &domain.Note{Active: true, CreatedAt: now.Add(-domain.NoteTTL)}

	// Elapsed equal to the lifetime is not yet expired; a nanosecond past is.
	if n.Expired(now) {
		t.Error("note at exactly the lifetime boundary reported expired")
	}
	if !n.Expired(now.Add(time.Nanosecond)) {
		t.Error("note past the lifetime boundary not reported expired")
	}
}

// ---------------------------------------------------------------------------
// Cache interplay
// ---------------------------------------------------------------------------

type stubCache struct {
	entries     map[string]string
	setTTLs     map[string]time.Duration
	invalidated []string
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]string), setTTLs: make(map[string]time.Duration)}
}

func (c *stubCache) Get(_ context.Context, code string) (string, bool, error) {
	content, ok := c.entries[code]
	return content, ok, nil
}

func (c *stubCache) Set(_ context.Context, code, content string, ttl time.Duration) error {
	c.entries[code] = content
	c.setTTLs[code] = ttl
	return nil
}

func (c *stubCache) Invalidate(_ context.Context, code string) error {
	delete(c.entries, code)
	c.invalidated = append(c.invalidated, code)
	return nil
}

func TestNoteService_Retrieve_CacheHitSkipsStore(t *testing.T) {
	repo := newStubNoteRepo()
	cache := newStubCache()
	cache.entries["hot-one"] = "cached content"
	svc := NewNoteService(repo, cache, NewShareCodeGenerator(rand.New(rand.NewPCG(1, 2))), discardLogger)

	result, err := svc.Retrieve(context.Background(), "hot-one")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "cached content" {
		t.Errorf("cache content not served: %q", result.Content)
	}
}

func TestNoteService_Retrieve_CacheFillBoundedByExpiry(t *testing.T) {
	repo := newStubNoteRepo()
	repo.byCode["warm-up"] = activeNote("warm-up", "fill me", time.Hour)
	cache := newStubCache()
	svc := NewNoteService(repo, cache, NewShareCodeGenerator(rand.New(rand.NewPCG(1, 2))), discardLogger)

	if _, err := svc.Retrieve(context.Background(), "warm-up"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ttl, ok := cache.setTTLs["warm-up"]
	if !ok {
		t.Fatal("expected cache fill after store read")
	}
	if ttl > 23*time.Hour || ttl <= 0 {
		t.Errorf("cache TTL %v not bounded by remaining lifetime", ttl)
	}
}

func TestNoteService_UpdateContent_InvalidatesCache(t *testing.T) {
	repo := newStubNoteRepo()
	repo.byCode["edit-me"] = activeNote("edit-me", "v1", time.Hour)
	cache := newStubCache()
	cache.entries["edit-me"] = "v1"
	svc := NewNoteService(repo, cache, NewShareCodeGenerator(rand.New(rand.NewPCG(1, 2))), discardLogger)

	if err := svc.UpdateContent(context.Background(), "note_edit-me", "v2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cache.entries["edit-me"]; ok {
		t.Error("stale cache entry survived an update")
	}
}

// ---------------------------------------------------------------------------
// Note management
// ---------------------------------------------------------------------------

func TestNoteService_CreateScratch_EmptyContent(t *testing.T) {
	repo := newStubNoteRepo()
	svc := seededService(repo)

	view, err := svc.CreateScratch(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Content != "" {
		t.Errorf("scratch note content = %q, want empty", view.Content)
	}
	if !view.Active {
		t.Error("scratch note must start active")
	}
	if view.Code == "" || view.ID == "" {
		t.Error("scratch note must carry a code and an id")
	}
	if view.CreatedBy != "user_1" {
		t.Errorf("owner = %q, want user_1", view.CreatedBy)
	}
}

func TestNoteService_List_ScopedToOwner(t *testing.T) {
	repo := newStubNoteRepo()
	mine := activeNote("mine-01", "a", time.Hour)
	mine.CreatedBy = "user_1"
	theirs := activeNote("their-1", "b", time.Hour)
	theirs.CreatedBy = "user_2"
	repo.byCode[mine.Code] = mine
	repo.byCode[theirs.Code] = theirs
	svc := seededService(repo)

	views, err := svc.List(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 || views[0].Code != "mine-01" {
		t.Errorf("owner scoping failed: %+v", views)
	}

	all, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("unscoped list returned %d notes, want 2", len(all))
	}
}

func TestNoteService_UpdateContent_WrapsAtEightyColumns(t *testing.T) {
	repo := newStubNoteRepo()
	repo.byCode["wrap-it"] = activeNote("wrap-it", "", time.Hour)
	svc := seededService(repo)

	long := strings.Repeat("a", 85)
	if err := svc.UpdateContent(context.Background(), "note_wrap-it", long); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.byCode["wrap-it"].Content
	for _, line := range strings.Split(stored, "\n") {
		if len(line) > 80 {
			t.Errorf("stored line exceeds 80 chars: %d", len(line))
		}
	}
}

func TestNoteService_UpdateContent_UnknownID(t *testing.T) {
	repo := newStubNoteRepo()
	svc := seededService(repo)

	err := svc.UpdateContent(context.Background(), "missing", "x")
	if !errors.Is(err, domain.ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
}

func TestNoteService_Delete_RemovesPermanently(t *testing.T) {
	repo := newStubNoteRepo()
	repo.byCode["bye-now"] = activeNote("bye-now", "x", time.Hour)
	svc := seededService(repo)

	if err := svc.Delete(context.Background(), "note_bye-now"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := repo.byCode["bye-now"]; ok {
		t.Error("note still present after delete")
	}

	if err := svc.Delete(context.Background(), "note_bye-now"); !errors.Is(err, domain.ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound on double delete, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Reap
// ---------------------------------------------------------------------------

func TestNoteService_ReapExpired_TouchesOnlyExpiredActive(t *testing.T) {
	repo := newStubNoteRepo()
	repo.byCode["fresh-1"] = activeNote("fresh-1", "a", time.Hour)
	repo.byCode["stale-1"] = activeNote("stale-1", "b", 25*time.Hour)
	already := activeNote("stale-2", "c", 30*time.Hour)
	already.Active = false
	repo.byCode["stale-2"] = already
	svc := seededService(repo)

	count, err := svc.ReapExpired(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("reaped %d notes, want 1", count)
	}
	if repo.byCode["fresh-1"].Active != true {
		t.Error("fresh note was reaped")
	}
	if repo.byCode["stale-1"].Active {
		t.Error("expired note was not reaped")
	}
}
