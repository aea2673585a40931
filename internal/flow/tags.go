package flow

// Stateless action tags. They work with or without an active conversation.
const (
	TagCancel         = "flow:cancel"
	TagMainMenu       = "menu:main"
	TagRoleChoose     = "role:choose"
	TagRoleSet        = "role:set"
	TagTeamNew        = "team:new"
	TagTeamJoin       = "team:join"
	TagTeams          = "teams:list"
	TagTeamCard       = "team:card"
	TagTeamExport     = "team:export"
	TagRoster         = "roster:list"
	TagRosterAdd      = "roster:add"
	TagRosterRemove   = "roster:remove"
	TagStudentNew     = "student:new"
	TagStudents       = "students:list"
	TagWorkoutNew     = "workout:new"
	TagWorkouts       = "workouts:list"
	TagWorkoutCard    = "workout:card"
	TagWorkoutAssign  = "workout:assign"
	TagTrainerLink    = "trainer:link"
	TagTrainees       = "trainees:list"
	TagSessions       = "sessions:list"
	TagSessionStart   = "session:start"
	TagSessionFinish  = "session:finish"
	TagSessionAbandon = "session:abandon"
)

// Step-scoped action tags. They only act when the current step declares them.
const (
	TagSkip          = "flow:skip"
	TagSport         = "team:sport"
	TagSpecialty     = "student:spec"
	TagLevel         = "student:level"
	TagPhase         = "workout:phase"
	TagPhaseDone     = "workout:done"
	TagExercisePick  = "workout:pick"
	TagAssignTeam    = "assign:team"
	TagAssignTrainee = "assign:trainee"
)

// Tags lists every action tag the dispatcher understands.
func Tags() []string {
	return []string{
		TagCancel, TagMainMenu, TagRoleChoose, TagRoleSet,
		TagTeamNew, TagTeamJoin, TagTeams, TagTeamCard, TagTeamExport,
		TagRoster, TagRosterAdd, TagRosterRemove,
		TagStudentNew, TagStudents,
		TagWorkoutNew, TagWorkouts, TagWorkoutCard, TagWorkoutAssign,
		TagTrainerLink, TagTrainees,
		TagSessions, TagSessionStart, TagSessionFinish, TagSessionAbandon,
		TagSkip, TagSport, TagSpecialty, TagLevel,
		TagPhase, TagPhaseDone, TagExercisePick,
		TagAssignTeam, TagAssignTrainee,
	}
}
