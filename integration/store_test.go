package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashu12122005/ppp-management/internal/attendance"
	"github.com/Ashu12122005/ppp-management/internal/students"
)

func TestAttendanceRemarkSameDayConverges(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	studentSvc := students.NewService(db, nil)
	attendanceSvc := attendance.NewService(db)

	student, err := studentSvc.Create(ctx, "", students.CreateInput{
		AdmissionName: "Ravi Kumar",
		ClassRollNo:   "24BCA101",
		ExamRollNo:    "EX-1001",
	})
	require.NoError(t, err)

	day := time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC)

	first, err := attendanceSvc.Mark(ctx, attendance.MarkInput{
		StudentID: student.ID,
		Date:      day,
		Status:    attendance.StatusPresent,
	})
	require.NoError(t, err)

	// A corrected sheet for the same day overwrites, never duplicates.
	second, err := attendanceSvc.Mark(ctx, attendance.MarkInput{
		StudentID: student.ID,
		Date:      day,
		Status:    attendance.StatusAbsent,
		Remarks:   "corrected after re-upload",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	list, err := attendanceSvc.List(ctx, attendance.ListFilter{StudentID: student.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, attendance.StatusAbsent, list[0].Status)
	assert.Equal(t, "corrected after re-upload", list[0].Remarks)
}

func TestStudentsWithoutEmailDoNotCollide(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	studentSvc := students.NewService(db, nil)

	// Empty emails land as NULL, which the unique constraint ignores.
	first, err := studentSvc.Create(ctx, "", students.CreateInput{
		AdmissionName: "Ravi Kumar",
		ClassRollNo:   "24BCA101",
		ExamRollNo:    "EX-2001",
	})
	require.NoError(t, err)
	assert.Empty(t, first.Email)

	second, err := studentSvc.Create(ctx, "", students.CreateInput{
		AdmissionName: "Sita Sharma",
		ClassRollNo:   "24BCA102",
		ExamRollNo:    "EX-2002",
	})
	require.NoError(t, err)
	assert.Empty(t, second.Email)

	// A repeated exam roll still trips the constraint.
	_, err = studentSvc.Create(ctx, "", students.CreateInput{
		AdmissionName: "Ravi Kumar",
		ClassRollNo:   "24BCA103",
		ExamRollNo:    "EX-2001",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, students.ErrDuplicate)
}
