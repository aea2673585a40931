package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/multicco/sportbot4-sub000/internal/storage"
)

// TeamReport lists active players with every session of a workout authored
// by the team's coach. Players without sessions appear once with empty columns.
func (s *Store) TeamReport(ctx context.Context, teamID int64) (out []storage.ReportRow, err error) {
	defer func(start time.Time) { observe(ctx, "report.team", start, err) }(time.Now())
	err = s.db.SelectContext(ctx, &out, `
		SELECT TRIM(rp.first_name || ' ' || COALESCE(rp.last_name, '')) AS player_name,
		       rp.jersey_number, rp.position,
		       w.name AS workout_name, ws.status, ws.rpe, ws.duration_minutes, ws.completed_at
		FROM roster_players rp
		JOIN teams t ON t.id = rp.team_id
		LEFT JOIN workout_sessions ws ON ws.subject_id = rp.subject_id
		     AND ws.workout_id IN (SELECT id FROM workouts WHERE created_by = t.coach_id)
		LEFT JOIN workouts w ON w.id = ws.workout_id
		WHERE rp.team_id = $1 AND rp.is_active
		ORDER BY rp.jersey_number NULLS LAST, player_name, ws.created_at`, teamID)
	if err != nil {
		return nil, fmt.Errorf("team report %d: %w", teamID, err)
	}
	return out, nil
}
