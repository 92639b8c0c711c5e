package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophcoach/internal/common"
	"github.com/dmitrijs2005/gophcoach/internal/dbx"
	"github.com/dmitrijs2005/gophcoach/internal/server/completion"
	"github.com/dmitrijs2005/gophcoach/internal/server/config"
	"github.com/dmitrijs2005/gophcoach/internal/server/models"
	"github.com/dmitrijs2005/gophcoach/internal/server/repositories/repomanager"
)

const maxTitleLength = 120

// AskResult correlates the model's reply with the session it was stored in.
type AskResult struct {
	Response  string
	SessionID int64
	Session   *models.CoachingSession
}

// CoachingService forwards questions to the completion provider and
// persists every exchange as a tagged coaching session.
type CoachingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	completer   completion.Completer
	timeout     time.Duration
}

func NewCoachingService(db *sql.DB, m repomanager.RepositoryManager, c completion.Completer, cfg *config.Config) *CoachingService {
	return &CoachingService{
		db:          db,
		repomanager: m,
		completer:   c,
		timeout:     cfg.CompletionTimeout,
	}
}

// Ask sends prompt to the provider and, only when that succeeds, stores a
// new session owned by id (or by nobody for anonymous callers) with the
// given tags. Provider failures match common.ErrServiceUnavailable.
func (s *CoachingService) Ask(ctx context.Context, id models.Identity, prompt string, tagNames []string) (*AskResult, error) {
	response, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrServiceUnavailable, err)
	}

	session := &models.CoachingSession{
		Title:    deriveTitle(prompt),
		Prompt:   prompt,
		Response: response,
	}
	if id.IsAuthenticated() {
		owner := id.UserID
		session.UserID = &owner
	}

	names := normalizeTagNames(tagNames)

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tagRepo := s.repomanager.Tags(tx)

		seen := make(map[int64]bool, len(names))
		tagIDs := make([]int64, 0, len(names))
		session.Tags = make([]models.Tag, 0, len(names))
		for _, name := range names {
			tag, err := tagRepo.GetOrCreate(ctx, name)
			if err != nil {
				return fmt.Errorf("error resolving tag %q: %w", name, err)
			}
			if seen[tag.ID] {
				continue
			}
			seen[tag.ID] = true
			tagIDs = append(tagIDs, tag.ID)
			session.Tags = append(session.Tags, *tag)
		}

		sessionRepo := s.repomanager.Sessions(tx)
		if _, err := sessionRepo.Create(ctx, session); err != nil {
			return fmt.Errorf("error creating session: %w", err)
		}
		if err := sessionRepo.AttachTags(ctx, session.ID, tagIDs); err != nil {
			return fmt.Errorf("error attaching tags: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &AskResult{Response: response, SessionID: session.ID, Session: session}, nil
}

func (s *CoachingService) complete(ctx context.Context, prompt string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.completer.Complete(ctx, prompt)
}

// normalizeTagNames trims names, drops blank ones and collapses names that
// differ only in case, keeping the first spelling.
func normalizeTagNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	result := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, n)
	}
	return result
}

// deriveTitle is the first non-blank line of the prompt, cut to
// maxTitleLength runes.
func deriveTitle(prompt string) string {
	var line string
	for l := range strings.SplitSeq(prompt, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	if utf8.RuneCountInString(line) <= maxTitleLength {
		return line
	}
	return string([]rune(line)[:maxTitleLength])
}
