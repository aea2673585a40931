package domain

import "time"

// SportType tags the sport a team plays.
type SportType string

const (
	SportFootball   SportType = "football"
	SportBasketball SportType = "basketball"
	SportVolleyball SportType = "volleyball"
	SportHockey     SportType = "hockey"
	SportAthletics  SportType = "athletics"
	SportOther      SportType = "other"
)

// SportTypes lists the selectable sports in menu order.
var SportTypes = []SportType{
	SportFootball, SportBasketball, SportVolleyball, SportHockey, SportAthletics, SportOther,
}

// Valid reports whether s is one of SportTypes.
func (s SportType) Valid() bool {
	for _, v := range SportTypes {
		if v == s {
			return true
		}
	}
	return false
}

// Team is a coach-owned group of roster players.
type Team struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Description  string    `db:"description"`
	CoachID      int64     `db:"coach_id"`
	SportType    SportType `db:"sport_type"`
	MaxMembers   int       `db:"max_members"`
	AccessCode   string    `db:"access_code"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	PlayersCount int       `db:"players_count"`
}

// Full reports whether the active roster reached MaxMembers.
func (t Team) Full() bool {
	return t.MaxMembers > 0 && t.PlayersCount >= t.MaxMembers
}

// NewTeam is the payload for creating a team.
type NewTeam struct {
	Name        string
	Description string
	CoachID     int64
	SportType   SportType
	MaxMembers  int
}

// RosterPlayer is a member of exactly one team.
type RosterPlayer struct {
	ID           int64     `db:"id"`
	TeamID       int64     `db:"team_id"`
	SubjectID    *int64    `db:"subject_id"`
	FirstName    string    `db:"first_name"`
	LastName     *string   `db:"last_name"`
	Position     *string   `db:"position"`
	JerseyNumber *int      `db:"jersey_number"`
	JoinedAt     time.Time `db:"joined_at"`
	IsActive     bool      `db:"is_active"`
}

// NewRosterPlayer is the payload for adding a player. Nil pointers persist as NULL.
type NewRosterPlayer struct {
	TeamID       int64
	SubjectID    *int64
	FirstName    string
	LastName     *string
	Position     *string
	JerseyNumber *int
}
