package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/multicco/sportbot4-sub000/internal/domain"
)

const rosterColumns = `id, team_id, subject_id, first_name, last_name, position, jersey_number, joined_at, is_active`

// IsTeamMember reports whether subjectID is on the team's active roster.
func (s *Store) IsTeamMember(ctx context.Context, teamID, subjectID int64) (ok bool, err error) {
	defer func(start time.Time) { observe(ctx, "roster.is_member", start, err) }(time.Now())
	err = s.db.GetContext(ctx, &ok, `
		SELECT EXISTS (
			SELECT 1 FROM roster_players
			WHERE team_id = $1 AND subject_id = $2 AND is_active
		)`, teamID, subjectID)
	if err != nil {
		return false, fmt.Errorf("is member: %w", err)
	}
	return ok, nil
}

// AddRosterPlayer locks the team row so concurrent joins cannot overfill it.
func (s *Store) AddRosterPlayer(ctx context.Context, in domain.NewRosterPlayer) (out domain.RosterPlayer, err error) {
	defer func(start time.Time) { observe(ctx, "roster.add", start, err) }(time.Now())
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		var maxMembers int
		if err := tx.GetContext(ctx, &maxMembers, `SELECT max_members FROM teams WHERE id = $1 FOR UPDATE`, in.TeamID); err != nil {
			return notFound(err)
		}
		if in.SubjectID != nil {
			var member bool
			if err := tx.GetContext(ctx, &member, `
				SELECT EXISTS (
					SELECT 1 FROM roster_players
					WHERE team_id = $1 AND subject_id = $2 AND is_active
				)`, in.TeamID, *in.SubjectID); err != nil {
				return err
			}
			if member {
				return domain.ErrAlreadyMember
			}
		}
		var count int
		if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM roster_players WHERE team_id = $1 AND is_active`, in.TeamID); err != nil {
			return err
		}
		if count >= maxMembers {
			return domain.ErrRosterFull
		}
		return tx.GetContext(ctx, &out, `
			INSERT INTO roster_players (team_id, subject_id, first_name, last_name, position, jersey_number)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+rosterColumns,
			in.TeamID, in.SubjectID, in.FirstName, in.LastName, in.Position, in.JerseyNumber,
		)
	})
	if err != nil {
		return domain.RosterPlayer{}, fmt.Errorf("add roster player: %w", err)
	}
	return out, nil
}

// GetRosterPlayer loads a player by id, active or not.
func (s *Store) GetRosterPlayer(ctx context.Context, id int64) (out domain.RosterPlayer, err error) {
	defer func(start time.Time) { observe(ctx, "roster.get", start, err) }(time.Now())
	if err = s.db.GetContext(ctx, &out, `SELECT `+rosterColumns+` FROM roster_players WHERE id = $1`, id); err != nil {
		return domain.RosterPlayer{}, fmt.Errorf("get roster player %d: %w", id, notFound(err))
	}
	return out, nil
}

// ListRoster returns active players ordered by jersey number, then name.
func (s *Store) ListRoster(ctx context.Context, teamID int64) (out []domain.RosterPlayer, err error) {
	defer func(start time.Time) { observe(ctx, "roster.list", start, err) }(time.Now())
	err = s.db.SelectContext(ctx, &out, `
		SELECT `+rosterColumns+` FROM roster_players
		WHERE team_id = $1 AND is_active
		ORDER BY jersey_number NULLS LAST, first_name`, teamID)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return out, nil
}

// DeactivateRosterPlayer soft-removes an active player; ErrNotFound otherwise.
func (s *Store) DeactivateRosterPlayer(ctx context.Context, playerID int64) (err error) {
	defer func(start time.Time) { observe(ctx, "roster.deactivate", start, err) }(time.Now())
	res, err := s.db.ExecContext(ctx, `UPDATE roster_players SET is_active = FALSE WHERE id = $1 AND is_active`, playerID)
	if err != nil {
		return fmt.Errorf("deactivate player: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("deactivate player %d: %w", playerID, domain.ErrNotFound)
	}
	return nil
}
