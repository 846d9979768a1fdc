package dashboard

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Service assembles the aggregate views behind the staff and student home
// screens. Queries are read-only and tolerate empty tables.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

type AttendanceToday struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Leave   int `json:"leave"`
}

type PPPStatusCounts struct {
	Pending   int `json:"pending"`
	Ongoing   int `json:"ongoing"`
	Completed int `json:"completed"`
}

type MonthlyFees struct {
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

type RecentStudent struct {
	ID            string    `json:"id"`
	AdmissionName string    `json:"admissionName"`
	ClassRollNo   string    `json:"classRollNo"`
	Department    string    `json:"department"`
	CreatedAt     time.Time `json:"createdAt"`
}

type RecentNotice struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

type StaffOverview struct {
	TotalStudents   int             `json:"totalStudents"`
	TotalPPPEntries int             `json:"totalPppEntries"`
	TotalFees       float64         `json:"totalFees"`
	AttendanceToday AttendanceToday `json:"attendanceToday"`
	PPPStatus       PPPStatusCounts `json:"pppStatus"`
	FeesTimeline    []MonthlyFees   `json:"feesTimeline"`
	RecentStudents  []RecentStudent `json:"recentStudents"`
	RecentNotices   []RecentNotice  `json:"recentNotices"`
}

// StaffOverview builds the teacher landing page numbers: headline counts,
// today's attendance split, the PPP status bar chart, and a six month fee
// collection timeline ending in the current month.
func (s *Service) StaffOverview(ctx context.Context) (StaffOverview, error) {
	var out StaffOverview

	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM students),
			(SELECT COUNT(*) FROM ppp_entries),
			(SELECT COALESCE(SUM(amount), 0) FROM fee_payments)
	`).Scan(&out.TotalStudents, &out.TotalPPPEntries, &out.TotalFees)
	if err != nil {
		return StaffOverview{}, fmt.Errorf("query headline counts: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'present'),
			COUNT(*) FILTER (WHERE status = 'absent'),
			COUNT(*) FILTER (WHERE status = 'leave')
		FROM attendance
		WHERE date = CURRENT_DATE
	`).Scan(&out.AttendanceToday.Present, &out.AttendanceToday.Absent, &out.AttendanceToday.Leave)
	if err != nil {
		return StaffOverview{}, fmt.Errorf("query today's attendance: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'ongoing'),
			COUNT(*) FILTER (WHERE status = 'completed')
		FROM ppp_entries
	`).Scan(&out.PPPStatus.Pending, &out.PPPStatus.Ongoing, &out.PPPStatus.Completed)
	if err != nil {
		return StaffOverview{}, fmt.Errorf("query ppp status counts: %w", err)
	}

	timeline, err := s.feesTimeline(ctx, time.Now().UTC(), 6)
	if err != nil {
		return StaffOverview{}, err
	}
	out.FeesTimeline = timeline

	out.RecentStudents, err = s.recentStudents(ctx, 5)
	if err != nil {
		return StaffOverview{}, err
	}
	out.RecentNotices, err = s.recentNotices(ctx, 5)
	if err != nil {
		return StaffOverview{}, err
	}

	return out, nil
}

func (s *Service) recentStudents(ctx context.Context, limit int) ([]RecentStudent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, admission_name, class_roll_no, department, created_at
		FROM students
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent students: %w", err)
	}
	defer rows.Close()

	out := []RecentStudent{}
	for rows.Next() {
		var st RecentStudent
		if err := rows.Scan(&st.ID, &st.AdmissionName, &st.ClassRollNo, &st.Department, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recent student: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Service) recentNotices(ctx context.Context, limit int) ([]RecentNotice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, created_at
		FROM notices
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent notices: %w", err)
	}
	defer rows.Close()

	out := []RecentNotice{}
	for rows.Next() {
		var n RecentNotice
		if err := rows.Scan(&n.ID, &n.Title, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recent notice: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Service) feesTimeline(ctx context.Context, now time.Time, months int) ([]MonthlyFees, error) {
	timeline := make([]MonthlyFees, 0, months)
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	for i := months - 1; i >= 0; i-- {
		monthStart := firstOfMonth.AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, -1)

		var total float64
		err := s.db.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(amount), 0)
			FROM fee_payments
			WHERE date BETWEEN $1 AND $2
		`, monthStart, monthEnd).Scan(&total)
		if err != nil {
			return nil, fmt.Errorf("query monthly fee total: %w", err)
		}

		timeline = append(timeline, MonthlyFees{
			Label: monthStart.Format("Jan 06"),
			Total: total,
		})
	}
	return timeline, nil
}

type StudentOverview struct {
	TotalPresent int     `json:"totalPresent"`
	TotalAbsent  int     `json:"totalAbsent"`
	TotalLeave   int     `json:"totalLeave"`
	TotalPaid    float64 `json:"totalPaid"`
}

// StudentOverview summarizes one student's attendance record and total fees
// paid across all time.
func (s *Service) StudentOverview(ctx context.Context, studentID string) (StudentOverview, error) {
	var out StudentOverview

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'present'),
			COUNT(*) FILTER (WHERE status = 'absent'),
			COUNT(*) FILTER (WHERE status = 'leave')
		FROM attendance
		WHERE student_id = $1
	`, studentID).Scan(&out.TotalPresent, &out.TotalAbsent, &out.TotalLeave)
	if err != nil {
		return StudentOverview{}, fmt.Errorf("query student attendance totals: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM fee_payments WHERE student_id = $1
	`, studentID).Scan(&out.TotalPaid)
	if err != nil {
		return StudentOverview{}, fmt.Errorf("query student fee total: %w", err)
	}

	return out, nil
}
