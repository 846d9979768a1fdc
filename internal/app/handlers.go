package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/Ashu12122005/ppp-management/internal/accounts"
	"github.com/Ashu12122005/ppp-management/internal/attendance"
	"github.com/Ashu12122005/ppp-management/internal/auth"
	"github.com/Ashu12122005/ppp-management/internal/fees"
	"github.com/Ashu12122005/ppp-management/internal/httpx"
	"github.com/Ashu12122005/ppp-management/internal/importer"
	"github.com/Ashu12122005/ppp-management/internal/notices"
	"github.com/Ashu12122005/ppp-management/internal/ppp"
	"github.com/Ashu12122005/ppp-management/internal/students"
)

// --- Auth ---

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !a.loginLimiter.Allow(r.Context(), clientAddr(r)) {
		httpx.WriteError(w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	type request struct {
		Username   string `json:"username"`
		Password   string `json:"password"`
		ClientName string `json:"clientName"`
	}
	var req request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := a.authService.Login(r.Context(), auth.LoginInput{
		Username:   req.Username,
		Password:   req.Password,
		ClientName: req.ClientName,
	})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (a *App) handleRefresh(w http.ResponseWriter, r *http.Request) {
	type request struct {
		RefreshToken string `json:"refreshToken"`
	}
	var req request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := a.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRefreshToken) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	type request struct {
		RefreshToken string `json:"refreshToken"`
	}
	var req request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	type request struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	var req request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := a.authService.ChangePassword(r.Context(), principal.AccountID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Students ---

func (a *App) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requireStaff(w, r)
	if !ok {
		return
	}

	var req students.CreateInput
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	student, err := a.studentService.Create(r.Context(), principal.AccountID, req)
	if err != nil {
		a.writeStudentError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, student)
}

func (a *App) handleListStudents(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireStaff(w, r); !ok {
		return
	}

	list, err := a.studentService.List(r.Context(), students.ListFilter{
		Department: r.URL.Query().Get("department"),
		Search:     r.URL.Query().Get("q"),
	})
	if err != nil {
		a.writeStudentError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"students": list})
}

func (a *App) handleGetStudent(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := a.requireStaff(w, r); !ok {
		return
	}

	student, err := a.studentService.Get(r.Context(), id)
	if err != nil {
		a.writeStudentError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, student)
}

func (a *App) handleUpdateStudent(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := a.requireStaff(w, r)
	if !ok {
		return
	}

	var req students.UpdateInput
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	student, err := a.studentService.Update(r.Context(), principal.AccountID, id, req)
	if err != nil {
		a.writeStudentError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, student)
}

// handleStudentProfile returns one student's record together with their
// attendance history, fee ledger, and PPP entries for the staff detail page.
func (a *App) handleStudentProfile(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := a.requireStaff(w, r); !ok {
		return
	}

	student, err := a.studentService.Get(r.Context(), id)
	if err != nil {
		a.writeStudentError(w, err)
		return
	}

	overview, err := a.dashboardService.StudentOverview(r.Context(), student.ID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	attendanceList, err := a.attendanceSvc.List(r.Context(), attendance.ListFilter{StudentID: student.ID})
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	feeList, err := a.feeService.List(r.Context(), fees.ListFilter{StudentID: student.ID})
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	entries, err := a.pppService.List(r.Context(), ppp.ListFilter{StudentID: student.ID})
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"student":    student,
		"overview":   overview,
		"attendance": attendanceList,
		"fees":       feeList,
		"pppEntries": entries,
	})
}

func (a *App) handleDeleteStudent(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := a.requireStaff(w, r)
	if !ok {
		return
	}

	if err := a.studentService.Delete(r.Context(), principal.AccountID, id); err != nil {
		a.writeStudentError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Imports ---

const uploadField = "excel_file"

func (a *App) handleImportStudents(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requireStaff(w, r)
	if !ok {
		return
	}

	data, filename, err := httpx.ReadFormFile(r, uploadField, a.cfg.MaxUploadBytes)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := a.imports.ImportStudents(r.Context(), principal.AccountID, filename, data)
	if err != nil {
		a.writeImportError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary)
}

func (a *App) handleImportAttendance(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requireStaff(w, r)
	if !ok {
		return
	}

	data, filename, err := httpx.ReadFormFile(r, uploadField, a.cfg.MaxUploadBytes)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := a.imports.ImportAttendance(r.Context(), principal.AccountID, filename, data)
	if err != nil {
		a.writeImportError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary)
}

func (a *App) handleImportFees(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requireStaff(w, r)
	if !ok {
		return
	}

	data, filename, err := httpx.ReadFormFile(r, uploadField, a.cfg.MaxUploadBytes)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := a.imports.ImportFees(r.Context(), principal.AccountID, filename, data)
	if err != nil {
		a.writeImportError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, summary)
}

// --- Attendance ---

func (a *App) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requireStaff(w, r)
	if !ok {
		return
	}

	type request struct {
		StudentID string `json:"studentId"`
		Date      string `json:"date"`
		Status    string `json:"status"`
		Remarks   string `json:"remarks"`
	}
	var req request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	rec, err := a.attendanceSvc.Mark(r.Context(), attendance.MarkInput{
		StudentID: req.StudentID,
		Date:      date,
		Status:    req.Status,
		Remarks:   req.Remarks,
		MarkedBy:  principal.AccountID,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrInvalidStatus) {
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, rec)
}

func (a *App) handleListAttendance(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	filter := attendance.ListFilter{StudentID: r.URL.Query().Get("studentId")}
	if !principal.IsStaff() {
		student, err := a.studentService.GetByAccount(r.Context(), principal.AccountID)
		if err != nil {
			a.writeStudentError(w, err)
			return
		}
		filter.StudentID = student.ID
	}
	if from, err := time.Parse("2006-01-02", r.URL.Query().Get("from")); err == nil {
		filter.From = &from
	}
	if to, err := time.Parse("2006-01-02", r.URL.Query().Get("to")); err == nil {
		filter.To = &to
	}

	list, err := a.attendanceSvc.List(r.Context(), filter)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"attendance": list})
}

// --- Fees ---

func (a *App) handleCreateFee(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requireStaff(w, r)
	if !ok {
		return
	}

	type request struct {
		StudentID   string  `json:"studentId"`
		Date        string  `json:"date"`
		Amount      float64 `json:"amount"`
		PaymentMode string  `json:"paymentMode"`
		Status      string  `json:"status"`
		Remarks     string  `json:"remarks"`
	}
	var req request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	payment, err := a.feeService.Create(r.Context(), fees.CreateInput{
		StudentID:   req.StudentID,
		Date:        date,
		Amount:      req.Amount,
		PaymentMode: req.PaymentMode,
		Status:      req.Status,
		Remarks:     req.Remarks,
		ReceivedBy:  principal.AccountID,
	})
	if err != nil {
		if errors.Is(err, fees.ErrInvalidInput) {
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, payment)
}

func (a *App) handleListFees(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	filter := fees.ListFilter{StudentID: r.URL.Query().Get("studentId")}
	if !principal.IsStaff() {
		student, err := a.studentService.GetByAccount(r.Context(), principal.AccountID)
		if err != nil {
			a.writeStudentError(w, err)
			return
		}
		filter.StudentID = student.ID
	}
	if from, err := time.Parse("2006-01-02", r.URL.Query().Get("from")); err == nil {
		filter.From = &from
	}
	if to, err := time.Parse("2006-01-02", r.URL.Query().Get("to")); err == nil {
		filter.To = &to
	}

	list, err := a.feeService.List(r.Context(), filter)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"fees": list})
}

// --- PPP ---

func (a *App) handleCreatePPP(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requireStaff(w, r)
	if !ok {
		return
	}

	type request struct {
		StudentID string `json:"studentId"`
		Date      string `json:"date"`
		Activity  string `json:"activity"`
		Remarks   string `json:"remarks"`
		Status    string `json:"status"`
	}
	var req request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	entry, err := a.pppService.Create(r.Context(), ppp.CreateInput{
		StudentID: req.StudentID,
		Date:      date,
		Activity:  req.Activity,
		Remarks:   req.Remarks,
		Status:    req.Status,
		CreatedBy: principal.AccountID,
	})
	if err != nil {
		a.writePPPError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, entry)
}

func (a *App) handleListPPP(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	filter := ppp.ListFilter{
		StudentID: r.URL.Query().Get("studentId"),
		Status:    r.URL.Query().Get("status"),
	}
	if !principal.IsStaff() {
		student, err := a.studentService.GetByAccount(r.Context(), principal.AccountID)
		if err != nil {
			a.writeStudentError(w, err)
			return
		}
		filter.StudentID = student.ID
	}

	list, err := a.pppService.List(r.Context(), filter)
	if err != nil {
		a.writePPPError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"entries": list})
}

func (a *App) handleUpdatePPPStatus(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := a.requireStaff(w, r)
	if !ok {
		return
	}

	type request struct {
		Status string `json:"status"`
	}
	var req request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := a.pppService.UpdateStatus(r.Context(), principal.AccountID, id, req.Status)
	if err != nil {
		a.writePPPError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entry)
}

// --- Notices ---

func (a *App) handleCreateNotice(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requireStaff(w, r)
	if !ok {
		return
	}

	type request struct {
		Title      string     `json:"title"`
		Message    string     `json:"message"`
		ValidFrom  *time.Time `json:"validFrom"`
		ValidUntil *time.Time `json:"validUntil"`
	}
	var req request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	notice, err := a.noticeService.Create(r.Context(), notices.CreateInput{
		Title:      req.Title,
		Message:    req.Message,
		ValidFrom:  req.ValidFrom,
		ValidUntil: req.ValidUntil,
		CreatedBy:  principal.AccountID,
	})
	if err != nil {
		if errors.Is(err, notices.ErrInvalidInput) {
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, notice)
}

func (a *App) handleListNotices(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	var (
		list []notices.Notice
		err  error
	)
	if principal.IsStaff() && r.URL.Query().Get("all") == "true" {
		list, err = a.noticeService.List(r.Context())
	} else {
		list, err = a.noticeService.ListActive(r.Context())
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"notices": list})
}

func (a *App) handleDeleteNotice(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := a.requireStaff(w, r)
	if !ok {
		return
	}

	if err := a.noticeService.Delete(r.Context(), principal.AccountID, id); err != nil {
		if errors.Is(err, notices.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (a *App) handleNoticesWS(w http.ResponseWriter, r *http.Request) {
	// Browsers cannot set Authorization headers on websocket dials, so the
	// token rides in a query parameter here.
	token := r.URL.Query().Get("token")
	if _, err := a.tokens.ParseAccessToken(token); err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	_ = a.noticeService.ServeWS(w, r)
}

// --- Dashboards ---

func (a *App) handleStaffDashboard(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireStaff(w, r); !ok {
		return
	}

	overview, err := a.dashboardService.StaffOverview(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, overview)
}

func (a *App) handleStudentDashboard(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	student, err := a.studentService.GetByAccount(r.Context(), principal.AccountID)
	if err != nil {
		if errors.Is(err, students.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "no student profile found")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	overview, err := a.dashboardService.StudentOverview(r.Context(), student.ID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	recentFees, err := a.feeService.List(r.Context(), fees.ListFilter{StudentID: student.ID})
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(recentFees) > 6 {
		recentFees = recentFees[:6]
	}

	entries, err := a.pppService.List(r.Context(), ppp.ListFilter{StudentID: student.ID})
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(entries) > 6 {
		entries = entries[:6]
	}

	activeNotices, err := a.noticeService.ListActive(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(activeNotices) > 5 {
		activeNotices = activeNotices[:5]
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"student":    student,
		"overview":   overview,
		"recentFees": recentFees,
		"pppEntries": entries,
		"notices":    activeNotices,
	})
}

func (a *App) handleMyProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requireUser(w, r)
	if !ok {
		return
	}

	student, err := a.studentService.GetByAccount(r.Context(), principal.AccountID)
	if err != nil {
		a.writeStudentError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, student)
}

// --- Accounts ---

func (a *App) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.requireStaff(w, r); !ok {
		return
	}

	list, err := a.accountService.List(r.Context())
	if err != nil {
		a.writeAccountError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"accounts": list})
}

func (a *App) handleCreateStaffAccount(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requireStaff(w, r)
	if !ok {
		return
	}

	type request struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	var req request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := a.accountService.CreateStaff(r.Context(), principal.AccountID, req.Username, req.Email, req.Password)
	if err != nil {
		a.writeAccountError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, account)
}

func (a *App) handleResetAccountPassword(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := a.requireStaff(w, r)
	if !ok {
		return
	}

	password, err := a.accountService.ResetPassword(r.Context(), principal.AccountID, id)
	if err != nil {
		a.writeAccountError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"temporaryPassword": password})
}

// --- Error mappers ---

func (a *App) writeStudentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, students.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, students.ErrDuplicate):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, students.ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

func (a *App) writeAccountError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accounts.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, accounts.ErrConflict):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, accounts.ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

func (a *App) writePPPError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ppp.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, ppp.ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

func (a *App) writeImportError(w http.ResponseWriter, err error) {
	var missing *importer.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		httpx.WriteError(w, http.StatusBadRequest, missing.Error())
	case errors.Is(err, importer.ErrUnsupportedFormat),
		errors.Is(err, importer.ErrInvalidInput),
		errors.Is(err, importer.ErrFileRead):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httpx.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
