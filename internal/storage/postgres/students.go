package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/multicco/sportbot4-sub000/internal/domain"
)

const studentColumns = `id, coach_id, subject_id, first_name, last_name, specialization, level, created_at, is_active`

// AddStudent inserts an individual student for the coach.
func (s *Store) AddStudent(ctx context.Context, in domain.NewStudent) (out domain.IndividualStudent, err error) {
	defer func(start time.Time) { observe(ctx, "student.add", start, err) }(time.Now())
	err = s.db.GetContext(ctx, &out, `
		INSERT INTO individual_students (coach_id, first_name, last_name, specialization, level)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+studentColumns,
		in.CoachID, in.FirstName, in.LastName, in.Specialization, string(in.Level),
	)
	if err != nil {
		return domain.IndividualStudent{}, fmt.Errorf("add student: %w", err)
	}
	return out, nil
}

// ListStudents returns the coach's active students by name.
func (s *Store) ListStudents(ctx context.Context, coachID int64) (out []domain.IndividualStudent, err error) {
	defer func(start time.Time) { observe(ctx, "student.list", start, err) }(time.Now())
	err = s.db.SelectContext(ctx, &out, `
		SELECT `+studentColumns+` FROM individual_students
		WHERE coach_id = $1 AND is_active
		ORDER BY first_name, id`, coachID)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return out, nil
}

// AssignTrainee links a trainee to a coach; ErrAlreadyLinked if the link exists.
func (s *Store) AssignTrainee(ctx context.Context, coachID, subjectID int64) (err error) {
	defer func(start time.Time) { observe(ctx, "trainee.assign", start, err) }(time.Now())
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO trainer_trainees (coach_id, subject_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, coachID, subjectID)
	if err != nil {
		return fmt.Errorf("assign trainee: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAlreadyLinked
	}
	return nil
}

// IsTrainee reports whether subjectID is linked to coachID.
func (s *Store) IsTrainee(ctx context.Context, coachID, subjectID int64) (ok bool, err error) {
	defer func(start time.Time) { observe(ctx, "trainee.is", start, err) }(time.Now())
	err = s.db.GetContext(ctx, &ok,
		`SELECT EXISTS (SELECT 1 FROM trainer_trainees WHERE coach_id = $1 AND subject_id = $2)`,
		coachID, subjectID)
	if err != nil {
		return false, fmt.Errorf("is trainee: %w", err)
	}
	return ok, nil
}

// ListTrainees returns the coach's trainees in link order.
func (s *Store) ListTrainees(ctx context.Context, coachID int64) (out []domain.Trainee, err error) {
	defer func(start time.Time) { observe(ctx, "trainee.list", start, err) }(time.Now())
	err = s.db.SelectContext(ctx, &out, `
		SELECT tt.coach_id, tt.subject_id, s.username, s.first_name, tt.created_at
		FROM trainer_trainees tt
		JOIN subjects s ON s.id = tt.subject_id
		WHERE tt.coach_id = $1
		ORDER BY tt.created_at`, coachID)
	if err != nil {
		return nil, fmt.Errorf("list trainees: %w", err)
	}
	return out, nil
}
