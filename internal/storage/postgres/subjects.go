package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/multicco/sportbot4-sub000/internal/domain"
)

const subjectColumns = `id, username, first_name, role, coach_code, created_at`

// UpsertSubject records a subject on first contact and refreshes its names after that.
func (s *Store) UpsertSubject(ctx context.Context, in domain.Subject) (out domain.Subject, err error) {
	defer func(start time.Time) { observe(ctx, "subject.upsert", start, err) }(time.Now())
	err = s.db.GetContext(ctx, &out, `
		INSERT INTO subjects (id, username, first_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username, first_name = EXCLUDED.first_name
		RETURNING `+subjectColumns,
		in.ID, in.Username, in.FirstName,
	)
	if err != nil {
		return domain.Subject{}, fmt.Errorf("upsert subject: %w", err)
	}
	return out, nil
}

// GetSubject loads a subject by Telegram id.
func (s *Store) GetSubject(ctx context.Context, id int64) (out domain.Subject, err error) {
	defer func(start time.Time) { observe(ctx, "subject.get", start, err) }(time.Now())
	err = s.db.GetContext(ctx, &out, `SELECT `+subjectColumns+` FROM subjects WHERE id = $1`, id)
	if err != nil {
		return domain.Subject{}, fmt.Errorf("get subject %d: %w", id, notFound(err))
	}
	return out, nil
}

// SetRole changes the role, issuing a coach code the first time a subject becomes a coach.
func (s *Store) SetRole(ctx context.Context, id int64, role domain.Role) (out domain.Subject, err error) {
	defer func(start time.Time) { observe(ctx, "subject.set_role", start, err) }(time.Now())
	err = s.withCode("set role", func(code string) error {
		return s.db.GetContext(ctx, &out, `
			UPDATE subjects
			SET role = $2::text,
			    coach_code = CASE WHEN $2::text = 'coach' THEN COALESCE(coach_code, $3) ELSE coach_code END
			WHERE id = $1
			RETURNING `+subjectColumns,
			id, string(role), code,
		)
	})
	if err != nil {
		return domain.Subject{}, fmt.Errorf("set role %d: %w", id, notFound(err))
	}
	return out, nil
}

// GetCoachByCode resolves a coach code; athletes never match.
func (s *Store) GetCoachByCode(ctx context.Context, code string) (out domain.Subject, err error) {
	defer func(start time.Time) { observe(ctx, "subject.by_code", start, err) }(time.Now())
	err = s.db.GetContext(ctx, &out,
		`SELECT `+subjectColumns+` FROM subjects WHERE coach_code = $1 AND role = 'coach'`,
		domain.NormalizeCode(code),
	)
	if err != nil {
		return domain.Subject{}, fmt.Errorf("coach by code: %w", notFound(err))
	}
	return out, nil
}
