package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/notedrop/notes-api/internal/api/metrics"
	"github.com/notedrop/notes-api/internal/core/domain"
	"github.com/notedrop/notes-api/internal/core/ports"
	"github.com/notedrop/notes-api/pkg/textwrap"
)

// maxCodeAttempts bounds the uniqueness probe loop. With a 70^6 keyspace the
// ceiling exists for correctness, not because it is expected to trigger.
const maxCodeAttempts = 10

// NoteService implements the share-code lifecycle and note management.
// The cache is optional; a nil cache disables the retrieve fast path.
type NoteService struct {
	repo   ports.NoteRepository
	cache  ports.NoteCache
	codes  ports.CodeGenerator
	logger zerolog.Logger
}

func NewNoteService(repo ports.NoteRepository, cache ports.NoteCache, codes ports.CodeGenerator, logger zerolog.Logger) *NoteService {
	if codes == nil {
		codes = NewShareCodeGenerator(nil)
	}
	return &NoteService{repo: repo, cache: cache, codes: codes, logger: logger}
}

// Share persists content under a freshly minted unique code. Failed
// uniqueness probes cause no writes; exactly one durable write happens on
// success.
func (s *NoteService) Share(ctx context.Context, input ports.ShareNoteInput) (*ports.ShareResult, error) {
	note, err := s.createWithUniqueCode(ctx, input.Content, input.UserID)
	if err != nil {
		return nil, err
	}

	metrics.SharesCreatedTotal.WithLabelValues("share").Inc()
	s.logger.Info().Str("code", note.Code).Str("note_id", note.ID).Msg("note shared")

	return &ports.ShareResult{ID: note.ID, Code: note.Code}, nil
}

// Retrieve resolves a code back to content. Expiry is evaluated lazily here:
// the first read after the lifetime elapsed flips active to false. The flip is
// idempotent, so racing late reads are safe to apply twice.
func (s *NoteService) Retrieve(ctx context.Context, code string) (*ports.RetrieveResult, error) {
	if s.cache != nil {
		content, ok, err := s.cache.Get(ctx, code)
		if err != nil {
			s.logger.Warn().Err(err).Str("code", code).Msg("cache lookup failed")
		} else if ok {
			metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
			metrics.RetrievesTotal.WithLabelValues("ok").Inc()
			return &ports.RetrieveResult{Content: content, Code: code}, nil
		} else {
			metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		}
	}

	note, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			metrics.RetrievesTotal.WithLabelValues("not_found").Inc()
		} else {
			metrics.RetrievesTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	now := time.Now().UTC()
	if note.Expired(now) {
		if note.Active {
			if err := s.repo.Deactivate(ctx, code); err != nil {
				s.logger.Warn().Err(err).Str("code", code).Msg("lazy deactivation failed")
			}
			s.invalidate(ctx, code)
		}
		metrics.RetrievesTotal.WithLabelValues("expired").Inc()
		return nil, domain.ErrNoteExpired
	}

	if !note.Active {
		metrics.RetrievesTotal.WithLabelValues("gone").Inc()
		return nil, domain.ErrNoteGone
	}

	if s.cache != nil {
		if ttl := note.ExpiresAt.Sub(now); ttl > 0 {
			if err := s.cache.Set(ctx, code, note.Content, ttl); err != nil {
				s.logger.Warn().Err(err).Str("code", code).Msg("cache fill failed")
			}
		}
	}

	metrics.RetrievesTotal.WithLabelValues("ok").Inc()
	return &ports.RetrieveResult{Content: note.Content, Code: note.Code}, nil
}

// CreateScratch mints a code for an empty note so the editing flow can start
// from a blank buffer.
func (s *NoteService) CreateScratch(ctx context.Context, userID string) (*ports.NoteView, error) {
	note, err := s.createWithUniqueCode(ctx, "", userID)
	if err != nil {
		return nil, err
	}

	metrics.SharesCreatedTotal.WithLabelValues("scratch").Inc()
	s.logger.Info().Str("code", note.Code).Str("note_id", note.ID).Msg("scratch note created")

	view := toView(note)
	return &view, nil
}

// List returns all notes newest first, optionally scoped to an owner.
func (s *NoteService) List(ctx context.Context, userID string) ([]ports.NoteView, error) {
	notes, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]ports.NoteView, 0, len(notes))
	for _, n := range notes {
		views = append(views, toView(n))
	}
	return views, nil
}

// UpdateContent rewraps the text at the editor's column limit and replaces the
// note's content in place. Code and timestamps are untouched.
func (s *NoteService) UpdateContent(ctx context.Context, id string, content string) error {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	wrapped := textwrap.WrapDefault(content)
	if err := s.repo.UpdateContent(ctx, id, wrapped); err != nil {
		return err
	}

	s.invalidate(ctx, note.Code)
	s.logger.Info().Str("note_id", id).Msg("note content updated")
	return nil
}

// Delete removes the note permanently. Nothing references a note, so there is
// no cascade.
func (s *NoteService) Delete(ctx context.Context, id string) error {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, note.Code)
	s.logger.Info().Str("note_id", id).Str("code", note.Code).Msg("note deleted")
	return nil
}

// ReapExpired deactivates every expired-but-active note in one pass. Cached
// entries need no eviction here: cache TTLs never outlive a note's expiry.
func (s *NoteService) ReapExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeactivateExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.NotesReapedTotal.Add(float64(n))
		s.logger.Info().Int64("count", n).Msg("expired notes reaped")
	}
	return n, nil
}

// createWithUniqueCode runs the probe-and-insert loop. A candidate that
// collides on the probe, or loses the insert race against the unique code
// index, burns one attempt.
func (s *NoteService) createWithUniqueCode(ctx context.Context, content, userID string) (*domain.Note, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := s.codes.Generate()

		_, err := s.repo.FindByCode(ctx, code)
		if err == nil {
			metrics.CodeGenerationRetriesTotal.Inc()
			continue
		}
		if !errors.Is(err, domain.ErrNoteNotFound) {
			return nil, err
		}

		now := time.Now().UTC()
		note := &domain.Note{
			Content:   content,
			Code:      code,
			Active:    true,
			CreatedAt: now,
			ExpiresAt: now.Add(domain.NoteTTL),
			CreatedBy: userID,
		}

		if err := s.repo.Create(ctx, note); err != nil {
			if errors.Is(err, domain.ErrCodeTaken) {
				metrics.CodeGenerationRetriesTotal.Inc()
				continue
			}
			s.logger.Error().Err(err).Msg("failed to create note")
			return nil, err
		}
		return note, nil
	}

	s.logger.Error().Int("attempts", maxCodeAttempts).Msg("share-code space probe ceiling reached")
	return nil, domain.ErrCodeSpaceExhausted
}

func (s *NoteService) invalidate(ctx context.Context, code string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, code); err != nil {
		s.logger.Warn().Err(err).Str("code", code).Msg("cache invalidation failed")
	}
}

func toView(n *domain.Note) ports.NoteView {
	return ports.NoteView{
		ID:        n.ID,
		Content:   n.Content,
		Code:      n.Code,
		Active:    n.Active,
		CreatedAt: n.CreatedAt,
		ExpiresAt: n.ExpiresAt,
		CreatedBy: n.CreatedBy,
	}
}
