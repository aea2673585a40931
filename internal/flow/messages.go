package flow

const (
	msgGenericError = "Something went wrong. Please try again."
	msgRestart      = "This conversation has expired. Please start again from the menu."
	msgUnsupported  = "This action is not supported."
	msgUseButtons   = "Please choose one of the buttons above."
	msgCoachOnly    = "This is available in coach mode. Switch your role first."
	msgNotYours     = "You can only manage your own records."
	msgGone         = "This record no longer exists."
)

func helpText() string {
	return "I help coaches run teams and athletes log their training.\n\n" +
		"/start - main menu\n" +
		"/newteam - create a team\n" +
		"/join CODE - join a team with its access code\n" +
		"/newstudent - add an individual student\n" +
		"/newworkout - build a workout\n" +
		"/workout CODE - start a workout by its code\n" +
		"/trainer CODE - link to your coach\n" +
		"/sessions - your assigned workouts\n" +
		"/cancel - abort the current dialog"
}
