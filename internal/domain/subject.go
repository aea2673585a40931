package domain

import "time"

// Role distinguishes coaches from athletes.
type Role string

const (
	RoleAthlete Role = "athlete"
	RoleCoach   Role = "coach"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RoleAthlete || r == RoleCoach }

// Subject is a Telegram user known to the bot.
type Subject struct {
	ID        int64     `db:"id"`
	Username  string    `db:"username"`
	FirstName string    `db:"first_name"`
	Role      Role      `db:"role"`
	CoachCode *string   `db:"coach_code"`
	CreatedAt time.Time `db:"created_at"`
}

// IsCoach reports whether the subject acts as a coach.
func (s Subject) IsCoach() bool { return s.Role == RoleCoach }

// DisplayName returns the best human label for the subject.
func (s Subject) DisplayName() string {
	if s.FirstName != "" {
		return s.FirstName
	}
	if s.Username != "" {
		return "@" + s.Username
	}
	return "athlete"
}

// Trainee is an athlete linked to a coach through a trainer-trainee assignment.
type Trainee struct {
	CoachID   int64     `db:"coach_id"`
	SubjectID int64     `db:"subject_id"`
	Username  string    `db:"username"`
	FirstName string    `db:"first_name"`
	LinkedAt  time.Time `db:"created_at"`
}
