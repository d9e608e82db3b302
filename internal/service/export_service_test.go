package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"attendance-hub/backend/internal/dto"
	"attendance-hub/backend/internal/model"
	"attendance-hub/backend/internal/repository"
)

func setupTestExportService(t *testing.T) (ExportService, *mockUserRepo, *mockAttendanceRepo) {
	t.Helper()

	users := newMockUserRepo()
	attendance := newMockAttendanceRepo(users)
	repo := &repository.Repository{
		User:       users,
		Attendance: attendance,
	}
	return NewExportService(repo, time.UTC, zap.NewNop()), users, attendance
}

func seedRecord(t *testing.T, attendance *mockAttendanceRepo, userID, date, status, note string) {
	t.Helper()

	d, err := time.Parse(dateLayout, date)
	if err != nil {
		t.Fatalf("解析测试日期失败: %v", err)
	}
	if err := attendance.Create(context.Background(), &model.AttendanceRecord{
		UserID:         userID,
		AttendanceDate: d,
		Status:         status,
		Note:           note,
	}); err != nil {
		t.Fatalf("写入测试记录失败: %v", err)
	}
}

func TestExportExcel(t *testing.T) {
	svc, users, attendance := setupTestExportService(t)
	users.put(&model.User{UserID: "u1", Username: "alice", Role: model.RoleUser})

	seedRecord(t, attendance, "u1", "2026-08-01", model.StatusPresent, "")
	seedRecord(t, attendance, "u1", "2026-08-02", model.StatusLate, "地铁故障")

	buf, filename, err := svc.ExportExcel(context.Background(), &dto.AttendanceListRequest{})
	if err != nil {
		t.Fatalf("ExportExcel 应成功，但返回错误: %v", err)
	}
	if !strings.HasPrefix(filename, "attendance_") || !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名格式错误: %s", filename)
	}

	// 回读生成的 Excel 验证内容
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("打开导出的 Excel 失败: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("考勤报表")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("行数 = %d, 期望 3 (表头 + 2 条记录)", len(rows))
	}
	if rows[0][0] != "日期" || rows[0][1] != "用户名" {
		t.Errorf("表头错误: %v", rows[0])
	}
	// 日期倒序，第一条数据行应为 08-02
	if rows[1][0] != "2026-08-02" || rows[1][1] != "alice" || rows[1][2] != model.StatusLate {
		t.Errorf("首条数据行错误: %v", rows[1])
	}
}

func TestExportExcel_RangeFiltered(t *testing.T) {
	svc, users, attendance := setupTestExportService(t)
	users.put(&model.User{UserID: "u1", Username: "alice", Role: model.RoleUser})

	seedRecord(t, attendance, "u1", "2026-07-31", model.StatusPresent, "")
	seedRecord(t, attendance, "u1", "2026-08-01", model.StatusPresent, "")

	buf, _, err := svc.ExportExcel(context.Background(), &dto.AttendanceListRequest{
		Start: "2026-08-01",
		End:   "2026-08-31",
	})
	if err != nil {
		t.Fatalf("ExportExcel 应成功，但返回错误: %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("打开导出的 Excel 失败: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("考勤报表")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("范围外记录不应导出, 行数 = %d, 期望 2", len(rows))
	}
}

func TestExportExcel_NoRecords(t *testing.T) {
	svc, _, _ := setupTestExportService(t)

	_, _, err := svc.ExportExcel(context.Background(), &dto.AttendanceListRequest{})
	if !errors.Is(err, ErrExportNoRecords) {
		t.Errorf("无记录应返回 ErrExportNoRecords, 实际: %v", err)
	}
}

func TestExportExcel_InvalidRange(t *testing.T) {
	svc, _, _ := setupTestExportService(t)

	_, _, err := svc.ExportExcel(context.Background(), &dto.AttendanceListRequest{
		Start: "2026-08-31",
		End:   "2026-08-01",
	})
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("start 晚于 end 应返回 ErrInvalidRange, 实际: %v", err)
	}
}

func TestExportICS(t *testing.T) {
	svc, users, attendance := setupTestExportService(t)
	users.put(&model.User{UserID: "u1", Username: "alice", Role: model.RoleUser})

	seedRecord(t, attendance, "u1", "2026-08-01", model.StatusPresent, "")
	seedRecord(t, attendance, "u1", "2026-08-02", model.StatusExcused, "年假")

	ics, err := svc.ExportICS(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ExportICS 应成功，但返回错误: %v", err)
	}

	if !strings.Contains(ics, "BEGIN:VCALENDAR") || !strings.Contains(ics, "END:VCALENDAR") {
		t.Error("输出应为合法 iCalendar 文档")
	}
	if strings.Count(ics, "BEGIN:VEVENT") != 2 {
		t.Errorf("事件数 = %d, 期望 2", strings.Count(ics, "BEGIN:VEVENT"))
	}
	if !strings.Contains(ics, "考勤: 出勤") || !strings.Contains(ics, "考勤: 请假") {
		t.Error("事件摘要应包含状态的中文描述")
	}
	if !strings.Contains(ics, "年假") {
		t.Error("备注应写入事件描述")
	}
}

func TestExportICS_OnlyOwnRecords(t *testing.T) {
	svc, users, attendance := setupTestExportService(t)
	users.put(&model.User{UserID: "u1", Username: "alice", Role: model.RoleUser})
	users.put(&model.User{UserID: "u2", Username: "bob", Role: model.RoleUser})

	seedRecord(t, attendance, "u1", "2026-08-01", model.StatusPresent, "")
	seedRecord(t, attendance, "u2", "2026-08-01", model.StatusAbsent, "")

	ics, err := svc.ExportICS(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ExportICS 应成功，但返回错误: %v", err)
	}
	if strings.Count(ics, "BEGIN:VEVENT") != 1 {
		t.Errorf("日历应只含本人记录, 事件数 = %d", strings.Count(ics, "BEGIN:VEVENT"))
	}
}

func TestExportICS_NoRecords(t *testing.T) {
	svc, users, _ := setupTestExportService(t)
	users.put(&model.User{UserID: "u1", Username: "alice", Role: model.RoleUser})

	_, err := svc.ExportICS(context.Background(), "u1")
	if !errors.Is(err, ErrExportNoRecords) {
		t.Errorf("无记录应返回 ErrExportNoRecords, 实际: %v", err)
	}
}
