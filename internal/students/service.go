package students

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Ashu12122005/ppp-management/internal/accounts"
	internaldb "github.com/Ashu12122005/ppp-management/internal/db"
)

var (
	ErrNotFound     = errors.New("student not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("student already exists")
)

// AccountProvisioner creates a login for a student that has none.
type AccountProvisioner interface {
	EnsureAccount(ctx context.Context, in accounts.ProvisionInput) (accounts.Account, error)
}

type Service struct {
	db          *sql.DB
	provisioner AccountProvisioner
	validate    *validator.Validate
}

func NewService(db *sql.DB, provisioner AccountProvisioner) *Service {
	return &Service{
		db:          db,
		provisioner: provisioner,
		validate:    validator.New(),
	}
}

type Student struct {
	ID            string     `json:"id"`
	Slno          *int       `json:"slno,omitempty"`
	AdmissionName string     `json:"admissionName"`
	DateOfJoining *time.Time `json:"dateOfJoining,omitempty"`
	ClassRollNo   string     `json:"classRollNo"`
	ExamRollNo    string     `json:"examRollNo"`
	Department    string     `json:"department"`
	Mobile        string     `json:"mobile"`
	Email         string     `json:"email,omitempty"`
	DOB           *time.Time `json:"dob,omitempty"`
	Category      string     `json:"category"`
	Aadhaar       string     `json:"aadhaar"`

	PresentAddress   string `json:"presentAddress"`
	PermanentAddress string `json:"permanentAddress"`

	InterStream     string   `json:"interStream"`
	InterPercentage *float64 `json:"interPercentage,omitempty"`
	InterRegdNo     string   `json:"interRegdNo"`
	InterCollege    string   `json:"interCollege"`

	GradStream     string   `json:"gradStream"`
	GradPercentage *float64 `json:"gradPercentage,omitempty"`
	GradRegdNo     string   `json:"gradRegdNo"`
	GradCollege    string   `json:"gradCollege"`

	AccountID string    `json:"accountId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateInput carries everything a staff member (or the bulk importer) can
// set on a new student. Department is free text on purpose; uploads carry
// values outside the advertised programme list and are accepted as-is.
type CreateInput struct {
	Slno          *int       `json:"slno"`
	AdmissionName string     `json:"admissionName" validate:"required,max=255"`
	DateOfJoining *time.Time `json:"dateOfJoining"`
	ClassRollNo   string     `json:"classRollNo" validate:"max=50"`
	ExamRollNo    string     `json:"examRollNo" validate:"required,max=50"`
	Department    string     `json:"department" validate:"max=20"`
	Mobile        string     `json:"mobile" validate:"max=20"`
	Email         string     `json:"email" validate:"omitempty,email"`
	DOB           *time.Time `json:"dob"`
	Category      string     `json:"category" validate:"max=100"`
	Aadhaar       string     `json:"aadhaar" validate:"max=30"`

	PresentAddress   string `json:"presentAddress"`
	PermanentAddress string `json:"permanentAddress"`

	InterStream     string   `json:"interStream" validate:"max=150"`
	InterPercentage *float64 `json:"interPercentage"`
	InterRegdNo     string   `json:"interRegdNo" validate:"max=80"`
	InterCollege    string   `json:"interCollege" validate:"max=255"`

	GradStream     string   `json:"gradStream" validate:"max=150"`
	GradPercentage *float64 `json:"gradPercentage"`
	GradRegdNo     string   `json:"gradRegdNo" validate:"max=80"`
	GradCollege    string   `json:"gradCollege" validate:"max=255"`

	// ProvisionAccount controls the email-based account path used by the
	// bulk importer. Manual creation leaves it false and relies on the
	// safety net instead.
	ProvisionAccount bool `json:"provisionAccount"`
}

const studentColumns = `
	id::text, slno, admission_name, date_of_joining, class_roll_no, exam_roll_no,
	department, mobile, COALESCE(email, ''), dob, category, aadhaar,
	present_address, permanent_address,
	inter_stream, inter_percentage, inter_regd_no, inter_college,
	grad_stream, grad_percentage, grad_regd_no, grad_college,
	COALESCE(account_id::text, ''), created_at, updated_at
`

func scanStudent(row interface{ Scan(...any) error }) (Student, error) {
	var s Student
	err := row.Scan(
		&s.ID, &s.Slno, &s.AdmissionName, &s.DateOfJoining, &s.ClassRollNo, &s.ExamRollNo,
		&s.Department, &s.Mobile, &s.Email, &s.DOB, &s.Category, &s.Aadhaar,
		&s.PresentAddress, &s.PermanentAddress,
		&s.InterStream, &s.InterPercentage, &s.InterRegdNo, &s.InterCollege,
		&s.GradStream, &s.GradPercentage, &s.GradRegdNo, &s.GradCollege,
		&s.AccountID, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// Create inserts a student and, when requested or when the safety net fires,
// provisions a login. Account provisioning failures do not roll back the
// student row.
func (s *Service) Create(ctx context.Context, actorAccountID string, in CreateInput) (Student, error) {
	in.AdmissionName = strings.TrimSpace(in.AdmissionName)
	in.ExamRollNo = strings.TrimSpace(in.ExamRollNo)
	in.ClassRollNo = strings.TrimSpace(in.ClassRollNo)
	in.Email = strings.TrimSpace(in.Email)
	if strings.TrimSpace(in.Department) == "" {
		in.Department = "BCA"
	}

	if err := s.validate.Struct(in); err != nil {
		return Student{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Student{}, fmt.Errorf("begin create student tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO students (
			slno, admission_name, date_of_joining, class_roll_no, exam_roll_no,
			department, mobile, email, dob, category, aadhaar,
			present_address, permanent_address,
			inter_stream, inter_percentage, inter_regd_no, inter_college,
			grad_stream, grad_percentage, grad_regd_no, grad_college
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21
		)
		RETURNING `+studentColumns,
		in.Slno, in.AdmissionName, in.DateOfJoining, in.ClassRollNo, in.ExamRollNo,
		in.Department, in.Mobile, in.Email, in.DOB, in.Category, in.Aadhaar,
		in.PresentAddress, in.PermanentAddress,
		in.InterStream, in.InterPercentage, in.InterRegdNo, in.InterCollege,
		in.GradStream, in.GradPercentage, in.GradRegdNo, in.GradCollege,
	)
	student, err := scanStudent(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Student{}, fmt.Errorf("%w: exam roll no %q", ErrDuplicate, in.ExamRollNo)
		}
		return Student{}, fmt.Errorf("insert student: %w", err)
	}

	if err := internaldb.AppendAuditEvent(ctx, tx, actorAccountID, "student.created", "student", student.ID, map[string]any{
		"examRollNo": student.ExamRollNo,
	}); err != nil {
		return Student{}, err
	}

	if err := tx.Commit(); err != nil {
		return Student{}, fmt.Errorf("commit create student tx: %w", err)
	}

	if s.provisioner != nil && student.AccountID == "" {
		provision := accounts.ProvisionInput{
			AdmissionName: student.AdmissionName,
			ExamRollNo:    student.ExamRollNo,
			ClassRollNo:   student.ClassRollNo,
			StudentID:     student.ID,
		}
		if in.ProvisionAccount && student.Email != "" {
			provision.Email = student.Email
		}
		account, err := s.provisioner.EnsureAccount(ctx, provision)
		if err != nil {
			return student, fmt.Errorf("student created but account provisioning failed: %w", err)
		}
		if err := s.linkAccount(ctx, student.ID, account.ID); err != nil {
			return student, err
		}
		student.AccountID = account.ID
	}

	return student, nil
}

func (s *Service) linkAccount(ctx context.Context, studentID, accountID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE students SET account_id = $1, updated_at = NOW() WHERE id = $2
	`, accountID, studentID)
	if err != nil {
		return fmt.Errorf("link account to student: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (Student, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
	student, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, ErrNotFound
		}
		return Student{}, fmt.Errorf("get student: %w", err)
	}
	return student, nil
}

// GetByAccount resolves the student profile behind a login.
func (s *Service) GetByAccount(ctx context.Context, accountID string) (Student, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+studentColumns+` FROM students WHERE account_id = $1`, accountID)
	student, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, ErrNotFound
		}
		return Student{}, fmt.Errorf("get student by account: %w", err)
	}
	return student, nil
}

type ListFilter struct {
	Department string
	Search     string
}

// List returns students ordered the way the roll call reads, class roll
// number first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students`
	conditions := []string{}
	args := []any{}

	if dept := strings.TrimSpace(filter.Department); dept != "" {
		args = append(args, dept)
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(admission_name ILIKE $%d OR class_roll_no ILIKE $%d OR exam_roll_no ILIKE $%d)", n, n, n))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY class_roll_no, admission_name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	out := []Student{}
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		out = append(out, student)
	}
	return out, rows.Err()
}

// FindByExamRoll is the duplicate check the bulk importer runs per row.
func (s *Service) FindByExamRoll(ctx context.Context, examRoll string) (Student, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+studentColumns+` FROM students WHERE exam_roll_no = $1`, examRoll)
	student, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, ErrNotFound
		}
		return Student{}, fmt.Errorf("find student by exam roll: %w", err)
	}
	return student, nil
}

// FindByClassRollDept returns the earliest matching student, mirroring a
// first-match lookup; class roll numbers are only unique within a department
// by convention, not constraint.
func (s *Service) FindByClassRollDept(ctx context.Context, classRoll, department string) (Student, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE class_roll_no = $1 AND department = $2
		ORDER BY created_at
		LIMIT 1
	`, classRoll, department)
	student, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, ErrNotFound
		}
		return Student{}, fmt.Errorf("find student by class roll and department: %w", err)
	}
	return student, nil
}

// FindByClassRoll matches on class roll number alone, used by the fee
// importer whose sheets carry no department column.
func (s *Service) FindByClassRoll(ctx context.Context, classRoll string) (Student, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+studentColumns+`
		FROM students
		WHERE class_roll_no = $1
		ORDER BY created_at
		LIMIT 1
	`, classRoll)
	student, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, ErrNotFound
		}
		return Student{}, fmt.Errorf("find student by class roll: %w", err)
	}
	return student, nil
}

// UpdateInput mirrors CreateInput minus the account provisioning switch; the
// exam roll number stays immutable after creation.
type UpdateInput struct {
	Slno          *int       `json:"slno"`
	AdmissionName string     `json:"admissionName" validate:"required,max=255"`
	DateOfJoining *time.Time `json:"dateOfJoining"`
	ClassRollNo   string     `json:"classRollNo" validate:"max=50"`
	Department    string     `json:"department" validate:"max=20"`
	Mobile        string     `json:"mobile" validate:"max=20"`
	Email         string     `json:"email" validate:"omitempty,email"`
	DOB           *time.Time `json:"dob"`
	Category      string     `json:"category" validate:"max=100"`
	Aadhaar       string     `json:"aadhaar" validate:"max=30"`

	PresentAddress   string `json:"presentAddress"`
	PermanentAddress string `json:"permanentAddress"`

	InterStream     string   `json:"interStream" validate:"max=150"`
	InterPercentage *float64 `json:"interPercentage"`
	InterRegdNo     string   `json:"interRegdNo" validate:"max=80"`
	InterCollege    string   `json:"interCollege" validate:"max=255"`

	GradStream     string   `json:"gradStream" validate:"max=150"`
	GradPercentage *float64 `json:"gradPercentage"`
	GradRegdNo     string   `json:"gradRegdNo" validate:"max=80"`
	GradCollege    string   `json:"gradCollege" validate:"max=255"`
}

func (s *Service) Update(ctx context.Context, actorAccountID, id string, in UpdateInput) (Student, error) {
	in.AdmissionName = strings.TrimSpace(in.AdmissionName)
	in.Email = strings.TrimSpace(in.Email)
	if strings.TrimSpace(in.Department) == "" {
		in.Department = "BCA"
	}
	if err := s.validate.Struct(in); err != nil {
		return Student{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Student{}, fmt.Errorf("begin update student tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		UPDATE students SET
			slno = $1, admission_name = $2, date_of_joining = $3, class_roll_no = $4,
			department = $5, mobile = $6, email = NULLIF($7, ''), dob = $8,
			category = $9, aadhaar = $10, present_address = $11, permanent_address = $12,
			inter_stream = $13, inter_percentage = $14, inter_regd_no = $15, inter_college = $16,
			grad_stream = $17, grad_percentage = $18, grad_regd_no = $19, grad_college = $20,
			updated_at = NOW()
		WHERE id = $21
		RETURNING `+studentColumns,
		in.Slno, in.AdmissionName, in.DateOfJoining, in.ClassRollNo,
		in.Department, in.Mobile, in.Email, in.DOB,
		in.Category, in.Aadhaar, in.PresentAddress, in.PermanentAddress,
		in.InterStream, in.InterPercentage, in.InterRegdNo, in.InterCollege,
		in.GradStream, in.GradPercentage, in.GradRegdNo, in.GradCollege,
		id,
	)
	student, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Student{}, ErrNotFound
		}
		if isUniqueViolation(err) {
			return Student{}, fmt.Errorf("%w: email %q", ErrDuplicate, in.Email)
		}
		return Student{}, fmt.Errorf("update student: %w", err)
	}

	if err := internaldb.AppendAuditEvent(ctx, tx, actorAccountID, "student.updated", "student", student.ID, map[string]any{}); err != nil {
		return Student{}, err
	}

	if err := tx.Commit(); err != nil {
		return Student{}, fmt.Errorf("commit update student tx: %w", err)
	}
	return student, nil
}

func (s *Service) Delete(ctx context.Context, actorAccountID, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete student tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := internaldb.AppendAuditEvent(ctx, tx, actorAccountID, "student.deleted", "student", id, map[string]any{}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete student tx: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
