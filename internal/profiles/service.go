// Package profiles stores applicant profiles and their workflow status in Postgres.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/memohai/scholarbot/internal/db"
	"github.com/memohai/scholarbot/internal/db/sqlc"
	"github.com/memohai/scholarbot/internal/normalize"
)

type querier interface {
	GetProfileByID(ctx context.Context, id int64) (sqlc.Profile, error)
	GetProfileByChatID(ctx context.Context, chatID pgtype.Int8) (sqlc.Profile, error)
	GetProfileByNormalizedFio(ctx context.Context, normalizedFio string) (sqlc.Profile, error)
	CreateProfile(ctx context.Context, arg sqlc.CreateProfileParams) (sqlc.Profile, error)
	TouchProfileChatMeta(ctx context.Context, arg sqlc.TouchProfileChatMetaParams) (int64, error)
	UpdateProfileScoped(ctx context.Context, arg sqlc.UpdateProfileScopedParams) (int64, error)
	UpdateProfileByChatID(ctx context.Context, arg sqlc.UpdateProfileByChatIDParams) (int64, error)
	UpdateProfileByID(ctx context.Context, arg sqlc.UpdateProfileByIDParams) (int64, error)
}

// Service is the profile store.
type Service struct {
	queries querier
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a profile store over sqlc queries.
func NewService(log *slog.Logger, queries *sqlc.Queries) *Service {
	return newService(log, queries)
}

func newService(log *slog.Logger, queries querier) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		queries: queries,
		logger:  log.With(slog.String("service", "profiles")),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// FindByChatID returns the profile linked to chatID.
func (s *Service) FindByChatID(ctx context.Context, chatID int64) (Profile, error) {
	row, err := s.queries.GetProfileByChatID(ctx, db.Int8(chatID))
	return s.one(row, err)
}

// FindByName returns the profile with the given canonical full name.
func (s *Service) FindByName(ctx context.Context, canonical string) (Profile, error) {
	row, err := s.queries.GetProfileByNormalizedFio(ctx, canonical)
	return s.one(row, err)
}

// FindByID returns the profile with the given row id.
func (s *Service) FindByID(ctx context.Context, id int64) (Profile, error) {
	row, err := s.queries.GetProfileByID(ctx, id)
	return s.one(row, err)
}

// CreateFromMatch inserts a profile for a name that matched the eligibility list. When a
// concurrent insert won the unique name constraint, the existing row is returned.
func (s *Service) CreateFromMatch(ctx context.Context, canonical string, meta ChatMeta) (Profile, error) {
	canonical = strings.TrimSpace(canonical)
	if canonical == "" {
		return Profile{}, errors.New("canonical name is required")
	}
	status := StatusMatchedAwaitingConsent
	row, err := s.queries.CreateProfile(ctx, sqlc.CreateProfileParams{
		Fio:           normalize.DisplayName(canonical),
		NormalizedFio: canonical,
		Status:        string(status),
		StatusLabel:   status.Label(),
		ChatID:        db.Int8(meta.ChatID),
		Username:      meta.Username,
		FirstName:     meta.FirstName,
		LastName:      meta.LastName,
	})
	if err == nil {
		p := toProfile(row)
		s.logger.Info("profile created", slog.Int64("profile_id", p.ID), slog.Int64("chat_id", meta.ChatID))
		return p, nil
	}
	if !db.IsUniqueViolation(err) {
		return Profile{}, fmt.Errorf("create profile: %w", err)
	}
	existing, err := s.FindByName(ctx, canonical)
	if err != nil {
		return Profile{}, fmt.Errorf("reload profile after conflict: %w", err)
	}
	s.logger.Info("profile already exists", slog.Int64("profile_id", existing.ID), slog.Int64("chat_id", meta.ChatID))
	return existing, nil
}

// TouchChatMeta refreshes the messenger names of the profile linked to meta.ChatID.
func (s *Service) TouchChatMeta(ctx context.Context, meta ChatMeta) error {
	_, err := s.queries.TouchProfileChatMeta(ctx, sqlc.TouchProfileChatMetaParams{
		ChatID:    db.Int8(meta.ChatID),
		Username:  meta.Username,
		FirstName: meta.FirstName,
		LastName:  meta.LastName,
	})
	if err != nil {
		return fmt.Errorf("touch chat meta: %w", err)
	}
	return nil
}

// UpdateScoped applies patch to profile id only when it is linked to chatID.
// Zero affected rows means the profile belongs to another chat or does not exist.
func (s *Service) UpdateScoped(ctx context.Context, id, chatID int64, patch Patch) (int64, error) {
	cols, err := s.columns(patch)
	if err != nil {
		return 0, err
	}
	n, err := s.queries.UpdateProfileScoped(ctx, sqlc.UpdateProfileScopedParams{
		Status:      cols.Status,
		StatusLabel: cols.StatusLabel,
		Consent:     cols.Consent,
		ConsentTs:   cols.ConsentTs,
		Email:       cols.Email,
		ClearDocs:   cols.ClearDocs,
		DocsEmail:   cols.DocsEmail,
		DocsEmailTs: cols.DocsEmailTs,
		Survey:      cols.Survey,
		SurveyTs:    cols.SurveyTs,
		LastAction:  cols.LastAction,
		LastSeenTs:  cols.LastSeenTs,
		ID:          id,
		ChatID:      db.Int8(chatID),
	})
	if err != nil {
		return 0, fmt.Errorf("update profile %d: %w", id, err)
	}
	if n == 0 {
		s.logger.Warn("scoped update matched no profile", slog.Int64("profile_id", id), slog.Int64("chat_id", chatID))
	}
	return n, nil
}

// UpdateByChatID applies patch to the profile(s) linked to chatID.
func (s *Service) UpdateByChatID(ctx context.Context, chatID int64, patch Patch) (int64, error) {
	cols, err := s.columns(patch)
	if err != nil {
		return 0, err
	}
	n, err := s.queries.UpdateProfileByChatID(ctx, sqlc.UpdateProfileByChatIDParams{
		Status:      cols.Status,
		StatusLabel: cols.StatusLabel,
		Consent:     cols.Consent,
		ConsentTs:   cols.ConsentTs,
		Email:       cols.Email,
		ClearDocs:   cols.ClearDocs,
		DocsEmail:   cols.DocsEmail,
		DocsEmailTs: cols.DocsEmailTs,
		Survey:      cols.Survey,
		SurveyTs:    cols.SurveyTs,
		LastAction:  cols.LastAction,
		LastSeenTs:  cols.LastSeenTs,
		ChatID:      db.Int8(chatID),
	})
	if err != nil {
		return 0, fmt.Errorf("update profile by chat %d: %w", chatID, err)
	}
	return n, nil
}

// UpdateByID applies patch to profile id without a chat check. Operator use only.
func (s *Service) UpdateByID(ctx context.Context, id int64, patch Patch) (int64, error) {
	cols, err := s.columns(patch)
	if err != nil {
		return 0, err
	}
	n, err := s.queries.UpdateProfileByID(ctx, sqlc.UpdateProfileByIDParams{
		Status:      cols.Status,
		StatusLabel: cols.StatusLabel,
		Consent:     cols.Consent,
		ConsentTs:   cols.ConsentTs,
		Email:       cols.Email,
		ClearDocs:   cols.ClearDocs,
		DocsEmail:   cols.DocsEmail,
		DocsEmailTs: cols.DocsEmailTs,
		Survey:      cols.Survey,
		SurveyTs:    cols.SurveyTs,
		LastAction:  cols.LastAction,
		LastSeenTs:  cols.LastSeenTs,
		ID:          id,
	})
	if err != nil {
		return 0, fmt.Errorf("update profile %d: %w", id, err)
	}
	return n, nil
}

type patchColumns struct {
	Status      pgtype.Text
	StatusLabel pgtype.Text
	Consent     pgtype.Text
	ConsentTs   pgtype.Timestamptz
	Email       pgtype.Text
	ClearDocs   bool
	DocsEmail   pgtype.Text
	DocsEmailTs pgtype.Timestamptz
	Survey      pgtype.Text
	SurveyTs    pgtype.Timestamptz
	LastAction  pgtype.Text
	LastSeenTs  pgtype.Timestamptz
}

func (s *Service) columns(patch Patch) (patchColumns, error) {
	if patch.IsZero() {
		return patchColumns{}, errors.New("empty profile patch")
	}
	now := db.TimeToPg(s.now())
	cols := patchColumns{ClearDocs: patch.ClearDocs}
	if patch.Status != "" {
		if !patch.Status.Valid() || patch.Status == StatusUnmatched {
			return patchColumns{}, fmt.Errorf("%w: %q", ErrInvalidStatus, patch.Status)
		}
		cols.Status = pgtype.Text{String: string(patch.Status), Valid: true}
		cols.StatusLabel = pgtype.Text{String: patch.Status.Label(), Valid: true}
	}
	if patch.Consent != ConsentUnset {
		cols.Consent = pgtype.Text{String: string(patch.Consent), Valid: true}
		cols.ConsentTs = now
	}
	if patch.Email != "" {
		cols.Email = pgtype.Text{String: patch.Email, Valid: true}
	}
	if patch.DocsEmail != "" && !patch.ClearDocs {
		cols.DocsEmail = pgtype.Text{String: patch.DocsEmail, Valid: true}
		cols.DocsEmailTs = now
	}
	if patch.Survey != "" {
		cols.Survey = pgtype.Text{String: patch.Survey, Valid: true}
		cols.SurveyTs = now
	}
	if patch.LastAction != "" {
		cols.LastAction = pgtype.Text{String: patch.LastAction, Valid: true}
		cols.LastSeenTs = now
	}
	return cols, nil
}

func (s *Service) one(row sqlc.Profile, err error) (Profile, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, err
	}
	return toProfile(row), nil
}

func toProfile(row sqlc.Profile) Profile {
	chatID, hasChat := db.Int8ToInt64(row.ChatID)
	status, err := ParseStatus(row.Status)
	if err != nil {
		status = StatusUnmatched
	}
	return Profile{
		ID:                 row.ID,
		FullName:           row.Fio,
		NormalizedFullName: row.NormalizedFio,
		ChatID:             chatID,
		HasChat:            hasChat,
		Username:           row.Username,
		FirstName:          row.FirstName,
		LastName:           row.LastName,
		Status:             status,
		StatusLabel:        row.StatusLabel,
		Consent:            Consent(db.TextToString(row.Consent)),
		ConsentAt:          db.TimeFromPg(row.ConsentTs),
		Email:              db.TextToString(row.Email),
		DocsEmail:          db.TextToString(row.DocsEmail),
		DocsEmailAt:        db.TimeFromPg(row.DocsEmailTs),
		Survey:             db.TextToString(row.Survey),
		SurveyAt:           db.TimeFromPg(row.SurveyTs),
		LastAction:         db.TextToString(row.LastAction),
		LastActionAt:       db.TimeFromPg(row.LastSeenTs),
		CreatedAt:          db.TimeFromPg(row.CreatedAt),
	}
}
