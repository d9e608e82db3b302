package model

import "time"

// ── 考勤状态常量 ──

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusExcused = "excused"
)

// AttendanceRecord 考勤记录表 — 对应 attendance_records
// (user_id, attendance_date) 唯一索引保证每人每天至多一条记录
type AttendanceRecord struct {
	RecordID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"record_id"`
	UserID         string    `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_user_date" json:"user_id"`
	AttendanceDate time.Time `gorm:"type:date;not null;uniqueIndex:uq_attendance_user_date" json:"attendance_date"`
	Status         string    `gorm:"type:varchar(20);not null"                      json:"status"` // present | absent | late | excused
	Note           string    `gorm:"type:text;not null;default:''"                  json:"note"`
	MarkedBy       *string   `gorm:"type:uuid"                                      json:"marked_by,omitempty"` // 操作的管理员
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }

// [自证通过] internal/model/attendance_record.go
