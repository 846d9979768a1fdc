package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashu12122005/ppp-management/internal/attendance"
	"github.com/Ashu12122005/ppp-management/internal/fees"
	"github.com/Ashu12122005/ppp-management/internal/students"
)

type fakeDirectory struct {
	byExamRoll map[string]students.Student
	created    []students.CreateInput
	createErr  error
	nextID     int
}

func newFakeDirectory(existing ...students.Student) *fakeDirectory {
	d := &fakeDirectory{byExamRoll: map[string]students.Student{}}
	for _, s := range existing {
		d.byExamRoll[s.ExamRollNo] = s
	}
	return d
}

func (d *fakeDirectory) FindByExamRoll(_ context.Context, examRoll string) (students.Student, error) {
	if s, ok := d.byExamRoll[examRoll]; ok {
		return s, nil
	}
	return students.Student{}, students.ErrNotFound
}

func (d *fakeDirectory) FindByClassRollDept(_ context.Context, classRoll, department string) (students.Student, error) {
	for _, s := range d.byExamRoll {
		if s.ClassRollNo == classRoll && s.Department == department {
			return s, nil
		}
	}
	return students.Student{}, students.ErrNotFound
}

func (d *fakeDirectory) FindByClassRoll(_ context.Context, classRoll string) (students.Student, error) {
	for _, s := range d.byExamRoll {
		if s.ClassRollNo == classRoll {
			return s, nil
		}
	}
	return students.Student{}, students.ErrNotFound
}

func (d *fakeDirectory) Create(_ context.Context, _ string, in students.CreateInput) (students.Student, error) {
	if d.createErr != nil {
		return students.Student{}, d.createErr
	}
	d.nextID++
	s := students.Student{
		ID:            fmt.Sprintf("student-%d", d.nextID),
		AdmissionName: in.AdmissionName,
		ClassRollNo:   in.ClassRollNo,
		ExamRollNo:    in.ExamRollNo,
		Department:    in.Department,
		Email:         in.Email,
	}
	if s.Department == "" {
		s.Department = "BCA"
	}
	d.byExamRoll[s.ExamRollNo] = s
	d.created = append(d.created, in)
	return s, nil
}

type fakeMarker struct {
	marks   []attendance.MarkInput
	markErr error
}

func (m *fakeMarker) Mark(_ context.Context, in attendance.MarkInput) (attendance.Record, error) {
	if m.markErr != nil {
		return attendance.Record{}, m.markErr
	}
	m.marks = append(m.marks, in)
	return attendance.Record{StudentID: in.StudentID, Date: in.Date, Status: in.Status}, nil
}

type fakeRecorder struct {
	payments  []fees.CreateInput
	createErr error
}

func (r *fakeRecorder) Create(_ context.Context, in fees.CreateInput) (fees.Payment, error) {
	if r.createErr != nil {
		return fees.Payment{}, r.createErr
	}
	r.payments = append(r.payments, in)
	return fees.Payment{StudentID: in.StudentID, Amount: in.Amount}, nil
}

func TestImportStudents(t *testing.T) {
	dir := newFakeDirectory(students.Student{ID: "s0", ExamRollNo: "24BCA100", ClassRollNo: "10", Department: "BCA"})
	im := New(dir, nil, nil, "")

	csv := "Sl No,Name of Student,Class Roll No,Exam Roll No,D.O.J,Email,Mobile,Dept\n" +
		"1,Ravi Kumar,11,24BCA101,05-07-2024,ravi@example.com,9999999999,BCA\n" + // imported
		"2,Sita Devi,12,,01-07-2024,,8888888888,BCA\n" + // missing exam roll
		"3,Mohan Das,10,24BCA100,01-07-2024,,7777777777,BCA\n" + // duplicate
		"4,Gita Rani,13,24BCA102,99-99-9999,,6666666666,BCA\n" + // invalid date
		"5,Hari Om,14,24BCA103,,nan,5555555555,\n" // imported, email and date blank

	summary, err := im.ImportStudents(context.Background(), "teacher-1", "students.csv", []byte(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 2, summary.Errors)
	assert.Equal(t, []string{
		"Row 3: Missing Exam Roll No",
		"Row 4: Student with Exam Roll No '24BCA100' already exists",
		"Row 5: Invalid date '99-99-9999'",
	}, summary.ErrorRows)
	assert.NotEmpty(t, summary.RunID)

	require.Len(t, dir.created, 2)
	first := dir.created[0]
	assert.Equal(t, "Ravi Kumar", first.AdmissionName)
	assert.Equal(t, "24BCA101", first.ExamRollNo)
	assert.Equal(t, "ravi@example.com", first.Email)
	assert.True(t, first.ProvisionAccount)
	require.NotNil(t, first.DateOfJoining)
	assert.Equal(t, time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC), *first.DateOfJoining)
	require.NotNil(t, first.Slno)
	assert.Equal(t, 1, *first.Slno)

	second := dir.created[1]
	assert.Equal(t, "", second.Email)
	assert.Nil(t, second.DateOfJoining)
}

func TestImportStudentsDuplicateWithinFile(t *testing.T) {
	dir := newFakeDirectory()
	im := New(dir, nil, nil, "")

	csv := "Name of Student,Class Roll No,Exam Roll No\n" +
		"Ravi Kumar,11,24BCA101\n" +
		"Ravi Kumar,11,24BCA101\n"

	summary, err := im.ImportStudents(context.Background(), "teacher-1", "students.csv", []byte(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 1, summary.Duplicates)
}

func TestImportStudentsMissingColumns(t *testing.T) {
	im := New(newFakeDirectory(), nil, nil, "")

	_, err := im.ImportStudents(context.Background(), "teacher-1", "students.csv",
		[]byte("Name of Student,Email\nRavi,ravi@example.com\n"))

	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"class_roll_no", "exam_roll_no"}, missing.Columns)
}

func TestImportStudentsCreateFailureCountsAsError(t *testing.T) {
	dir := newFakeDirectory()
	dir.createErr = errors.New("insert student: boom")
	im := New(dir, nil, nil, "")

	summary, err := im.ImportStudents(context.Background(), "teacher-1", "students.csv",
		[]byte("Name of Student,Class Roll No,Exam Roll No\nRavi,11,24BCA101\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Imported)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, []string{"Row 2: insert student: boom"}, summary.ErrorRows)
}

func TestImportAttendance(t *testing.T) {
	dir := newFakeDirectory(students.Student{ID: "s1", ExamRollNo: "24BCA101", ClassRollNo: "11", Department: "BCA"})
	marker := &fakeMarker{}
	im := New(dir, marker, nil, "")

	csv := "Department,Class Roll No,Date,Status,Remarks\n" +
		"BCA,11,2024-07-05,Present,\n" + // saved
		"BCA,11,2024-07-06,sick,\n" + // skipped, unknown status
		"BCA,99,2024-07-05,absent,\n" + // skipped, no such student
		"BCA,11,not-a-date,present,\n" // error

	summary, err := im.ImportAttendance(context.Background(), "teacher-1", "attendance.csv", []byte(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Saved)
	assert.Equal(t, 2, summary.Skipped)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "Row 5:")

	require.Len(t, marker.marks, 1)
	mark := marker.marks[0]
	assert.Equal(t, "s1", mark.StudentID)
	assert.Equal(t, "present", mark.Status)
	assert.Equal(t, "teacher-1", mark.MarkedBy)
	assert.Equal(t, time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC), mark.Date)
}

func TestImportAttendanceMissingColumns(t *testing.T) {
	im := New(newFakeDirectory(), &fakeMarker{}, nil, "")
	_, err := im.ImportAttendance(context.Background(), "teacher-1", "attendance.csv",
		[]byte("Department,Date\nBCA,2024-07-05\n"))

	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"class_roll_no", "status"}, missing.Columns)
}

func TestImportFees(t *testing.T) {
	dir := newFakeDirectory(students.Student{ID: "s1", ExamRollNo: "24BCA101", ClassRollNo: "11", Department: "BCA"})
	recorder := &fakeRecorder{}
	im := New(dir, nil, recorder, "")

	csv := "Date,Class Roll No,Amount,Payment Mode,Status,Remarks\n" +
		"2024-07-05,11,5000,upi,paid,july installment\n" + // saved
		"2024-07-05,99,5000,,,\n" + // skipped, no such student
		"2024-07-05,11,not-a-number,,,\n" // skipped with error

	summary, err := im.ImportFees(context.Background(), "teacher-1", "fees.csv", []byte(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Saved)
	assert.Equal(t, 2, summary.Skipped)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "Row 4: invalid amount")

	require.Len(t, recorder.payments, 1)
	payment := recorder.payments[0]
	assert.Equal(t, "s1", payment.StudentID)
	assert.Equal(t, 5000.0, payment.Amount)
	assert.Equal(t, "upi", payment.PaymentMode)
	assert.Equal(t, "teacher-1", payment.ReceivedBy)
}

func TestImportFeesSameSheetTwiceDuplicatesPayments(t *testing.T) {
	dir := newFakeDirectory(students.Student{ID: "s1", ExamRollNo: "24BCA101", ClassRollNo: "11", Department: "BCA"})
	recorder := &fakeRecorder{}
	im := New(dir, nil, recorder, "")

	csv := "Date,Class Roll No,Amount\n2024-07-05,11,5000\n"
	for i := 0; i < 2; i++ {
		summary, err := im.ImportFees(context.Background(), "teacher-1", "fees.csv", []byte(csv))
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Saved)
	}
	assert.Len(t, recorder.payments, 2)
}
