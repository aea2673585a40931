package flow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/multicco/sportbot4-sub000/core/telegram/format"
	"github.com/multicco/sportbot4-sub000/internal/domain"
)

func md(s string) string {
	out, err := format.EscapeMarkdown(s, format.MarkdownV1, "")
	if err != nil {
		return s
	}
	return out
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func cancelRow() []Button {
	return []Button{{Text: "❌ Cancel", Tag: TagCancel}}
}

func skipRow() []Button {
	return []Button{{Text: "⏭ Skip", Tag: TagSkip}}
}

func menuRow() []Button {
	return []Button{{Text: "🏠 Menu", Tag: TagMainMenu}}
}

func renderMainMenu(s domain.Subject, notice string) Reply {
	var b strings.Builder
	if notice != "" {
		b.WriteString(notice)
		b.WriteString("\n\n")
	}
	if s.IsCoach() {
		fmt.Fprintf(&b, "Coach menu, %s.", s.DisplayName())
		if s.CoachCode != nil {
			fmt.Fprintf(&b, "\nYour trainer code: %s", *s.CoachCode)
		}
		return Reply{Text: b.String(), Buttons: [][]Button{
			{{Text: "👥 Teams", Tag: TagTeams}, {Text: "🧑‍🎓 Students", Tag: TagStudents}},
			{{Text: "🏋️ Workouts", Tag: TagWorkouts}, {Text: "🤝 Trainees", Tag: TagTrainees}},
			{{Text: "🔁 Switch role", Tag: TagRoleChoose}},
		}}
	}
	fmt.Fprintf(&b, "Athlete menu, %s.", s.DisplayName())
	return Reply{Text: b.String(), Buttons: [][]Button{
		{{Text: "📋 My sessions", Tag: TagSessions}, {Text: "➕ Join team", Tag: TagTeamJoin}},
		{{Text: "🤝 Link trainer", Tag: TagTrainerLink}},
		{{Text: "🔁 Switch role", Tag: TagRoleChoose}},
	}}
}

func renderRoleMenu() Reply {
	return Reply{Text: "Who are you?", Buttons: [][]Button{{
		{Text: "🧑‍🏫 Coach", Tag: TagRoleSet, Payload: string(domain.RoleCoach)},
		{Text: "🏃 Athlete", Tag: TagRoleSet, Payload: string(domain.RoleAthlete)},
	}}}
}

func renderTeamCreated(t domain.Team) Reply {
	return Reply{
		Mode: ModeMarkdown,
		Text: fmt.Sprintf("Team *%s* created.\nSport: %s\nAccess code: `%s`\n\nShare the code so athletes can /join.",
			md(t.Name), t.SportType, t.AccessCode),
		Buttons: [][]Button{{{Text: "Open team", Tag: TagTeamCard, Payload: id(t.ID)}}, menuRow()},
	}
}

func renderTeams(teams []domain.Team) Reply {
	rows := make([][]Button, 0, len(teams)+2)
	for _, t := range teams {
		rows = append(rows, []Button{{
			Text:    fmt.Sprintf("%s (%d/%d)", t.Name, t.PlayersCount, t.MaxMembers),
			Tag:     TagTeamCard,
			Payload: id(t.ID),
		}})
	}
	rows = append(rows, []Button{{Text: "➕ New team", Tag: TagTeamNew}}, menuRow())
	text := "Your teams:"
	if len(teams) == 0 {
		text = "You have no teams yet."
	}
	return Reply{Text: text, Buttons: rows}
}

func renderTeamCard(t domain.Team) Reply {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", md(t.Name))
	if t.Description != "" {
		fmt.Fprintf(&b, "%s\n", md(t.Description))
	}
	fmt.Fprintf(&b, "Sport: %s\nPlayers: %d/%d\nAccess code: `%s`", t.SportType, t.PlayersCount, t.MaxMembers, t.AccessCode)
	return Reply{Mode: ModeMarkdown, Text: b.String(), Buttons: [][]Button{
		{{Text: "📋 Roster", Tag: TagRoster, Payload: id(t.ID)}, {Text: "➕ Add player", Tag: TagRosterAdd, Payload: id(t.ID)}},
		{{Text: "📊 Export", Tag: TagTeamExport, Payload: id(t.ID)}},
		{{Text: "⬅️ Teams", Tag: TagTeams}},
	}}
}

func playerLine(p domain.RosterPlayer) string {
	name := p.FirstName
	if p.LastName != nil {
		name += " " + *p.LastName
	}
	if p.JerseyNumber != nil {
		name = fmt.Sprintf("#%d %s", *p.JerseyNumber, name)
	}
	if p.Position != nil {
		name += " (" + *p.Position + ")"
	}
	return name
}

func renderRoster(t domain.Team, players []domain.RosterPlayer) Reply {
	var b strings.Builder
	fmt.Fprintf(&b, "%s roster (%d/%d)", t.Name, len(players), t.MaxMembers)
	rows := make([][]Button, 0, len(players)+1)
	for _, p := range players {
		fmt.Fprintf(&b, "\n• %s", playerLine(p))
		rows = append(rows, []Button{{Text: "🗑 " + playerLine(p), Tag: TagRosterRemove, Payload: id(p.ID)}})
	}
	if len(players) == 0 {
		b.WriteString("\nNo players yet.")
	}
	rows = append(rows, []Button{{Text: "⬅️ Team", Tag: TagTeamCard, Payload: id(t.ID)}})
	return Reply{Text: b.String(), Buttons: rows}
}

func renderStudents(students []domain.IndividualStudent) Reply {
	var b strings.Builder
	b.WriteString("Your students:")
	for _, s := range students {
		fmt.Fprintf(&b, "\n• %s %s, %s", s.FirstName, format.Deref(s.LastName, ""), s.Level)
		if s.Specialization != nil {
			fmt.Fprintf(&b, ", %s", *s.Specialization)
		}
	}
	if len(students) == 0 {
		b.WriteString("\nNone yet.")
	}
	return Reply{Text: b.String(), Buttons: [][]Button{
		{{Text: "➕ New student", Tag: TagStudentNew}},
		menuRow(),
	}}
}

func renderTrainees(trainees []domain.Trainee) Reply {
	var b strings.Builder
	b.WriteString("Linked trainees:")
	for _, tr := range trainees {
		name := tr.FirstName
		if tr.Username != "" {
			name += " @" + tr.Username
		}
		fmt.Fprintf(&b, "\n• %s", name)
	}
	if len(trainees) == 0 {
		b.WriteString("\nNobody yet. Share your trainer code from the main menu.")
	}
	return Reply{Text: b.String(), Buttons: [][]Button{menuRow()}}
}

func renderWorkouts(workouts []domain.WorkoutDefinition) Reply {
	rows := make([][]Button, 0, len(workouts)+2)
	for _, w := range workouts {
		rows = append(rows, []Button{{Text: w.Name, Tag: TagWorkoutCard, Payload: id(w.ID)}})
	}
	rows = append(rows, []Button{{Text: "➕ New workout", Tag: TagWorkoutNew}}, menuRow())
	text := "Your workouts:"
	if len(workouts) == 0 {
		text = "You have no workouts yet."
	}
	return Reply{Text: text, Buttons: rows}
}

var phaseTitles = map[domain.Phase]string{
	domain.PhaseWarmup:      "Warm-up",
	domain.PhaseNervousPrep: "Nervous system prep",
	domain.PhaseMain:        "Main",
	domain.PhaseCooldown:    "Cool-down",
}

func exerciseLine(e domain.ExerciseAssignment) string {
	reps := strconv.Itoa(e.RepsMin)
	if e.RepsMax != e.RepsMin {
		reps += "-" + strconv.Itoa(e.RepsMax)
	}
	line := fmt.Sprintf("%s %dx%s", e.ExerciseName, e.Sets, reps)
	switch {
	case e.Percent1RM != nil:
		line += fmt.Sprintf(" @ %g%%", *e.Percent1RM)
	case e.FixedWeight != nil:
		line += fmt.Sprintf(" @ %gkg", *e.FixedWeight)
	}
	if e.RestSeconds > 0 {
		line += fmt.Sprintf(", rest %ds", e.RestSeconds)
	}
	return line
}

func workoutText(w domain.WorkoutDefinition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*", md(w.Name))
	if w.Description != "" {
		fmt.Fprintf(&b, "\n%s", md(w.Description))
	}
	for _, p := range w.OrderedPhases() {
		fmt.Fprintf(&b, "\n\n_%s_", phaseTitles[p])
		for i, e := range w.Phases[p] {
			fmt.Fprintf(&b, "\n%d. %s", i+1, md(exerciseLine(e)))
		}
	}
	fmt.Fprintf(&b, "\n\nCode: `%s`", w.UniqueID)
	return b.String()
}

func renderWorkoutCard(w domain.WorkoutDefinition) Reply {
	return Reply{Mode: ModeMarkdown, Text: workoutText(w), Buttons: [][]Button{
		{{Text: "📨 Assign", Tag: TagWorkoutAssign, Payload: id(w.ID)}},
		{{Text: "⬅️ Workouts", Tag: TagWorkouts}},
	}}
}

func sessionButtons(s domain.WorkoutSession) []Button {
	if s.Status == domain.SessionPending {
		return []Button{
			{Text: "▶️ Start " + s.WorkoutName, Tag: TagSessionStart, Payload: id(s.ID)},
			{Text: "✖️", Tag: TagSessionAbandon, Payload: id(s.ID)},
		}
	}
	return []Button{
		{Text: "🏁 Finish " + s.WorkoutName, Tag: TagSessionFinish, Payload: id(s.ID)},
		{Text: "✖️", Tag: TagSessionAbandon, Payload: id(s.ID)},
	}
}

func renderSessions(sessions []domain.WorkoutSession) Reply {
	rows := make([][]Button, 0, len(sessions)+1)
	var b strings.Builder
	b.WriteString("Your workouts:")
	for _, s := range sessions {
		fmt.Fprintf(&b, "\n• %s (%s)", s.WorkoutName, strings.ReplaceAll(string(s.Status), "_", " "))
		rows = append(rows, sessionButtons(s))
	}
	if len(sessions) == 0 {
		b.WriteString("\nNothing assigned right now.")
	}
	rows = append(rows, menuRow())
	return Reply{Text: b.String(), Buttons: rows}
}

func renderSessionStarted(w domain.WorkoutDefinition, s domain.WorkoutSession) Reply {
	return Reply{
		Mode:    ModeMarkdown,
		Text:    workoutText(w) + "\n\nSession started. Tap finish when you are done.",
		Buttons: [][]Button{sessionButtons(s)},
	}
}
