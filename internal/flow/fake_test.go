package flow

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/multicco/sportbot4-sub000/core/telegram/state"
	"github.com/multicco/sportbot4-sub000/internal/domain"
	"github.com/multicco/sportbot4-sub000/internal/storage"
)

var errBoom = errors.New("boom")

// fakeStore is an in-memory storage.Gateway that records write calls.
type fakeStore struct {
	mu        sync.Mutex
	nextID    int64
	subjects  map[int64]domain.Subject
	teams     map[int64]domain.Team
	roster    []domain.RosterPlayer
	students  []domain.IndividualStudent
	trainees  map[[2]int64]bool
	workouts  map[int64]domain.WorkoutDefinition
	sessions  map[int64]domain.WorkoutSession
	exercises []string
	writes    []string
	failOn    string
	panicOn   string
}

var _ storage.Gateway = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:    100,
		subjects:  map[int64]domain.Subject{},
		teams:     map[int64]domain.Team{},
		trainees:  map[[2]int64]bool{},
		workouts:  map[int64]domain.WorkoutDefinition{},
		sessions:  map[int64]domain.WorkoutSession{},
		exercises: []string{"Back squat", "Jog"},
	}
}

func (f *fakeStore) enter(op string, write bool) error {
	if f.panicOn == op {
		panic("fake " + op)
	}
	if write {
		f.writes = append(f.writes, op)
	}
	if f.failOn == op {
		return errBoom
	}
	return nil
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) activeCount(teamID int64) int {
	n := 0
	for _, p := range f.roster {
		if p.TeamID == teamID && p.IsActive {
			n++
		}
	}
	return n
}

func (f *fakeStore) UpsertSubject(_ context.Context, s domain.Subject) (domain.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("UpsertSubject", false); err != nil {
		return domain.Subject{}, err
	}
	if cur, ok := f.subjects[s.ID]; ok {
		cur.Username, cur.FirstName = s.Username, s.FirstName
		f.subjects[s.ID] = cur
		return cur, nil
	}
	s.Role = domain.RoleAthlete
	f.subjects[s.ID] = s
	return s, nil
}

func (f *fakeStore) GetSubject(_ context.Context, id int64) (domain.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetSubject", false); err != nil {
		return domain.Subject{}, err
	}
	s, ok := f.subjects[id]
	if !ok {
		return domain.Subject{}, domain.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) SetRole(_ context.Context, id int64, role domain.Role) (domain.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("SetRole", true); err != nil {
		return domain.Subject{}, err
	}
	s, ok := f.subjects[id]
	if !ok {
		return domain.Subject{}, domain.ErrNotFound
	}
	s.Role = role
	if role == domain.RoleCoach && s.CoachCode == nil {
		code := "CODE" + id2s(id)
		s.CoachCode = &code
	}
	f.subjects[id] = s
	return s, nil
}

func (f *fakeStore) GetCoachByCode(_ context.Context, code string) (domain.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetCoachByCode", false); err != nil {
		return domain.Subject{}, err
	}
	for _, s := range f.subjects {
		if s.IsCoach() && s.CoachCode != nil && *s.CoachCode == domain.NormalizeCode(code) {
			return s, nil
		}
	}
	return domain.Subject{}, domain.ErrNotFound
}

func (f *fakeStore) CreateTeam(_ context.Context, in domain.NewTeam) (domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateTeam", true); err != nil {
		return domain.Team{}, err
	}
	t := domain.Team{
		ID: f.id(), Name: in.Name, Description: in.Description, CoachID: in.CoachID,
		SportType: in.SportType, MaxMembers: in.MaxMembers, AccessCode: "TEAM" + id2s(f.nextID),
	}
	f.teams[t.ID] = t
	return t, nil
}

func (f *fakeStore) GetTeam(_ context.Context, id int64) (domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetTeam", false); err != nil {
		return domain.Team{}, err
	}
	t, ok := f.teams[id]
	if !ok {
		return domain.Team{}, domain.ErrNotFound
	}
	t.PlayersCount = f.activeCount(id)
	return t, nil
}

func (f *fakeStore) GetTeamByCode(_ context.Context, code string) (domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("GetTeamByCode", false); err != nil {
		return domain.Team{}, err
	}
	for _, t := range f.teams {
		if t.AccessCode == domain.NormalizeCode(code) {
			t.PlayersCount = f.activeCount(t.ID)
			return t, nil
		}
	}
	return domain.Team{}, domain.ErrNotFound
}

func (f *fakeStore) ListCoachTeams(_ context.Context, coachID int64) ([]domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListCoachTeams", false); err != nil {
		return nil, err
	}
	var out []domain.Team
	for _, t := range f.teams {
		if t.CoachID == coachID {
			t.PlayersCount = f.activeCount(t.ID)
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) IsTeamMember(_ context.Context, teamID, subjectID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("IsTeamMember", false); err != nil {
		return false, err
	}
	for _, p := range f.roster {
		if p.TeamID == teamID && p.IsActive && p.SubjectID != nil && *p.SubjectID == subjectID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) AddRosterPlayer(_ context.Context, in domain.NewRosterPlayer) (domain.RosterPlayer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AddRosterPlayer", true); err != nil {
		return domain.RosterPlayer{}, err
	}
	t, ok := f.teams[in.TeamID]
	if !ok {
		return domain.RosterPlayer{}, domain.ErrNotFound
	}
	if f.activeCount(t.ID) >= t.MaxMembers {
		return domain.RosterPlayer{}, domain.ErrRosterFull
	}
	p := domain.RosterPlayer{
		ID: f.id(), TeamID: in.TeamID, SubjectID: in.SubjectID, FirstName: in.FirstName,
		LastName: in.LastName, Position: in.Position, JerseyNumber: in.JerseyNumber, IsActive: true,
	}
	f.roster = append(f.roster, p)
	return p, nil
}

func (f *fakeStore) GetRosterPlayer(_ context.Context, id int64) (domain.RosterPlayer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.roster {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.RosterPlayer{}, domain.ErrNotFound
}

func (f *fakeStore) ListRoster(_ context.Context, teamID int64) ([]domain.RosterPlayer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.RosterPlayer
	for _, p := range f.roster {
		if p.TeamID == teamID && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) DeactivateRosterPlayer(_ context.Context, playerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("DeactivateRosterPlayer", true); err != nil {
		return err
	}
	for i := range f.roster {
		if f.roster[i].ID == playerID && f.roster[i].IsActive {
			f.roster[i].IsActive = false
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeStore) AddStudent(_ context.Context, in domain.NewStudent) (domain.IndividualStudent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AddStudent", true); err != nil {
		return domain.IndividualStudent{}, err
	}
	s := domain.IndividualStudent{
		ID: f.id(), CoachID: in.CoachID, FirstName: in.FirstName, LastName: in.LastName,
		Specialization: in.Specialization, Level: in.Level, IsActive: true,
	}
	f.students = append(f.students, s)
	return s, nil
}

func (f *fakeStore) ListStudents(_ context.Context, coachID int64) ([]domain.IndividualStudent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.IndividualStudent
	for _, s := range f.students {
		if s.CoachID == coachID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) AssignTrainee(_ context.Context, coachID, subjectID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AssignTrainee", true); err != nil {
		return err
	}
	key := [2]int64{coachID, subjectID}
	if f.trainees[key] {
		return domain.ErrAlreadyLinked
	}
	f.trainees[key] = true
	return nil
}

func (f *fakeStore) IsTrainee(_ context.Context, coachID, subjectID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.trainees[[2]int64{coachID, subjectID}], nil
}

func (f *fakeStore) ListTrainees(_ context.Context, coachID int64) ([]domain.Trainee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Trainee
	for key := range f.trainees {
		if key[0] == coachID {
			s := f.subjects[key[1]]
			out = append(out, domain.Trainee{CoachID: coachID, SubjectID: key[1], FirstName: s.FirstName})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectID < out[j].SubjectID })
	return out, nil
}

func (f *fakeStore) CreateWorkout(_ context.Context, in domain.NewWorkout) (domain.WorkoutDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CreateWorkout", true); err != nil {
		return domain.WorkoutDefinition{}, err
	}
	w := domain.WorkoutDefinition{
		ID: f.id(), Name: in.Name, Description: in.Description, CreatedBy: in.CreatedBy,
		UniqueID: "WORK" + id2s(f.nextID), Phases: map[domain.Phase][]domain.ExerciseAssignment{},
	}
	for _, ex := range in.Exercises {
		ex.Position = len(w.Phases[ex.Phase]) + 1
		w.Phases[ex.Phase] = append(w.Phases[ex.Phase], ex)
	}
	f.workouts[w.ID] = w
	return w, nil
}

func (f *fakeStore) GetWorkout(_ context.Context, id int64) (domain.WorkoutDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workouts[id]
	if !ok {
		return domain.WorkoutDefinition{}, domain.ErrNotFound
	}
	return w, nil
}

func (f *fakeStore) GetWorkoutByCode(_ context.Context, code string) (domain.WorkoutDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.workouts {
		if w.UniqueID == domain.NormalizeCode(code) {
			return w, nil
		}
	}
	return domain.WorkoutDefinition{}, domain.ErrNotFound
}

func (f *fakeStore) ListWorkouts(_ context.Context, coachID int64) ([]domain.WorkoutDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.WorkoutDefinition
	for _, w := range f.workouts {
		if w.CreatedBy == coachID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeStore) ListExercises(_ context.Context, limit int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("ListExercises", false); err != nil {
		return nil, err
	}
	if len(f.exercises) > limit {
		return f.exercises[:limit], nil
	}
	return f.exercises, nil
}

func (f *fakeStore) newSession(workoutID, subjectID int64, status domain.SessionStatus, at *time.Time) domain.WorkoutSession {
	s := domain.WorkoutSession{
		ID: f.id(), WorkoutID: workoutID, WorkoutName: f.workouts[workoutID].Name,
		SubjectID: subjectID, Status: status, StartedAt: at,
	}
	f.sessions[s.ID] = s
	return s
}

func (f *fakeStore) AssignWorkout(_ context.Context, workoutID int64, subjectIDs []int64) ([]domain.WorkoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AssignWorkout", true); err != nil {
		return nil, err
	}
	if _, ok := f.workouts[workoutID]; !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]domain.WorkoutSession, 0, len(subjectIDs))
	for _, sid := range subjectIDs {
		out = append(out, f.newSession(workoutID, sid, domain.SessionPending, nil))
	}
	return out, nil
}

func (f *fakeStore) StartWorkout(_ context.Context, workoutID, subjectID int64, at time.Time) (domain.WorkoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("StartWorkout", true); err != nil {
		return domain.WorkoutSession{}, err
	}
	return f.newSession(workoutID, subjectID, domain.SessionInProgress, &at), nil
}

func (f *fakeStore) transition(sessionID, subjectID int64, to domain.SessionStatus) (domain.WorkoutSession, error) {
	s, ok := f.sessions[sessionID]
	if !ok || s.SubjectID != subjectID {
		return domain.WorkoutSession{}, domain.ErrNotFound
	}
	if !s.Status.CanTransition(to) {
		return domain.WorkoutSession{}, domain.ErrInvalidTransition
	}
	s.Status = to
	return s, nil
}

func (f *fakeStore) StartSession(_ context.Context, sessionID, subjectID int64, at time.Time) (domain.WorkoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("StartSession", true); err != nil {
		return domain.WorkoutSession{}, err
	}
	s, err := f.transition(sessionID, subjectID, domain.SessionInProgress)
	if err != nil {
		return domain.WorkoutSession{}, err
	}
	s.StartedAt = &at
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeStore) GetSession(_ context.Context, id int64) (domain.WorkoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return domain.WorkoutSession{}, domain.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) CompleteSession(_ context.Context, r domain.SessionResult) (domain.WorkoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("CompleteSession", true); err != nil {
		return domain.WorkoutSession{}, err
	}
	s, err := f.transition(r.SessionID, r.SubjectID, domain.SessionCompleted)
	if err != nil {
		return domain.WorkoutSession{}, err
	}
	rpe := r.RPE
	at := r.CompletedAt
	s.RPE, s.CompletedAt, s.DurationMinutes = &rpe, &at, r.DurationMinutes
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeStore) AbandonSession(_ context.Context, sessionID, subjectID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("AbandonSession", true); err != nil {
		return err
	}
	s, err := f.transition(sessionID, subjectID, domain.SessionAbandoned)
	if err != nil {
		return err
	}
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeStore) ListActiveSessions(_ context.Context, subjectID int64) ([]domain.WorkoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.WorkoutSession
	for _, s := range f.sessions {
		if s.SubjectID == subjectID && s.Status.Active() {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) AbandonStaleSessions(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeStore) TeamReport(_ context.Context, teamID int64) ([]storage.ReportRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.ReportRow
	for _, p := range f.roster {
		if p.TeamID == teamID && p.IsActive {
			out = append(out, storage.ReportRow{PlayerName: p.FirstName, JerseyNumber: p.JerseyNumber})
		}
	}
	return out, nil
}

func id2s(v int64) string { return id(v) }

type recorder struct {
	mu      sync.Mutex
	replies []Reply
}

func (r *recorder) Send(_ context.Context, rep Reply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, rep)
	return nil
}

type note struct {
	to    int64
	reply Reply
}

type notifier struct {
	mu    sync.Mutex
	notes []note
	err   error
}

func (n *notifier) Notify(_ context.Context, to int64, r Reply) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note{to: to, reply: r})
	return n.err
}

type fakeExporter struct{}

func (fakeExporter) TeamReport(team domain.Team, rows []storage.ReportRow) (Document, error) {
	return Document{FileName: team.Name + ".xlsx", Data: []byte{byte(len(rows))}}, nil
}

const (
	coachID   int64 = 1
	athleteID int64 = 2
)

type harness struct {
	t     *testing.T
	store *fakeStore
	state state.Store
	out   *recorder
	notes *notifier
	d     *Dispatcher
	now   time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		store: newFakeStore(),
		state: state.NewMemoryStore(),
		out:   &recorder{},
		notes: &notifier{},
		now:   time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
	}
	code := "COACH001"
	h.store.subjects[coachID] = domain.Subject{ID: coachID, FirstName: "Maria", Role: domain.RoleCoach, CoachCode: &code}
	h.store.subjects[athleteID] = domain.Subject{ID: athleteID, FirstName: "Alex", Username: "alex", Role: domain.RoleAthlete}
	h.d = New(Deps{
		Store:        h.store,
		State:        h.state,
		Notifier:     h.notes,
		Exporter:     fakeExporter{},
		Now:          func() time.Time { return h.now },
		TeamCapacity: 30,
	})
	return h
}

func (h *harness) dispatch(ev Event) error {
	return h.d.Dispatch(context.Background(), ev, h.out)
}

func (h *harness) text(subject int64, s string) {
	h.t.Helper()
	if err := h.dispatch(Event{SubjectID: subject, Kind: KindText, Text: s}); err != nil {
		h.t.Fatalf("text %q: %v", s, err)
	}
}

func (h *harness) action(subject int64, tag, payload string) {
	h.t.Helper()
	if err := h.dispatch(Event{SubjectID: subject, Kind: KindAction, Tag: tag, Payload: payload}); err != nil {
		h.t.Fatalf("action %s|%s: %v", tag, payload, err)
	}
}

func (h *harness) command(subject int64, name, args string) {
	h.t.Helper()
	if err := h.dispatch(Event{SubjectID: subject, Kind: KindCommand, Command: name, Text: args}); err != nil {
		h.t.Fatalf("command /%s %s: %v", name, args, err)
	}
}

func (h *harness) conv(subject int64) state.Conversation {
	h.t.Helper()
	c, err := h.state.Get(context.Background(), subject)
	if err != nil {
		h.t.Fatalf("state get: %v", err)
	}
	return c
}

func (h *harness) step(subject int64) state.Step {
	return h.conv(subject).Step
}

func (h *harness) last() Reply {
	h.t.Helper()
	if len(h.out.replies) == 0 {
		h.t.Fatal("no replies")
	}
	return h.out.replies[len(h.out.replies)-1]
}

func (h *harness) lastContains(sub string) {
	h.t.Helper()
	if got := h.last().Text; !strings.Contains(got, sub) {
		h.t.Fatalf("last reply %q does not contain %q", got, sub)
	}
}

func (h *harness) addTeam(name string, max int) domain.Team {
	t := domain.Team{
		ID: h.store.id(), Name: name, CoachID: coachID, SportType: domain.SportFootball,
		MaxMembers: max, AccessCode: domain.NormalizeCode(name + "01"),
	}
	h.store.teams[t.ID] = t
	return t
}

func hasButton(r Reply, tag string) bool {
	for _, row := range r.Buttons {
		for _, b := range row {
			if b.Tag == tag {
				return true
			}
		}
	}
	return false
}
