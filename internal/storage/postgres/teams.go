package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/multicco/sportbot4-sub000/internal/domain"
)

const teamSelect = `
	SELECT t.id, t.name, t.description, t.coach_id, t.sport_type, t.max_members,
	       t.access_code, t.created_at, t.updated_at,
	       (SELECT COUNT(*) FROM roster_players rp WHERE rp.team_id = t.id AND rp.is_active) AS players_count
	FROM teams t`

// CreateTeam inserts a team with a fresh access code.
func (s *Store) CreateTeam(ctx context.Context, in domain.NewTeam) (out domain.Team, err error) {
	defer func(start time.Time) { observe(ctx, "team.create", start, err) }(time.Now())
	err = s.withCode("create team", func(code string) error {
		return s.db.GetContext(ctx, &out, `
			INSERT INTO teams (name, description, coach_id, sport_type, max_members, access_code)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, name, description, coach_id, sport_type, max_members, access_code,
			          created_at, updated_at, 0 AS players_count`,
			in.Name, in.Description, in.CoachID, string(in.SportType), in.MaxMembers, code,
		)
	})
	if err != nil {
		return domain.Team{}, fmt.Errorf("create team: %w", err)
	}
	return out, nil
}

// GetTeam loads a team with its active player count.
func (s *Store) GetTeam(ctx context.Context, id int64) (out domain.Team, err error) {
	defer func(start time.Time) { observe(ctx, "team.get", start, err) }(time.Now())
	if err = s.db.GetContext(ctx, &out, teamSelect+` WHERE t.id = $1`, id); err != nil {
		return domain.Team{}, fmt.Errorf("get team %d: %w", id, notFound(err))
	}
	return out, nil
}

// GetTeamByCode resolves an access code, ignoring case and surrounding space.
func (s *Store) GetTeamByCode(ctx context.Context, code string) (out domain.Team, err error) {
	defer func(start time.Time) { observe(ctx, "team.by_code", start, err) }(time.Now())
	if err = s.db.GetContext(ctx, &out, teamSelect+` WHERE t.access_code = $1`, domain.NormalizeCode(code)); err != nil {
		return domain.Team{}, fmt.Errorf("team by code: %w", notFound(err))
	}
	return out, nil
}

// ListCoachTeams returns the coach's teams in creation order.
func (s *Store) ListCoachTeams(ctx context.Context, coachID int64) (out []domain.Team, err error) {
	defer func(start time.Time) { observe(ctx, "team.list", start, err) }(time.Now())
	if err = s.db.SelectContext(ctx, &out, teamSelect+` WHERE t.coach_id = $1 ORDER BY t.created_at`, coachID); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return out, nil
}
