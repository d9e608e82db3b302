//go:build integration

// 集成测试需要真实 PostgreSQL：
//
//	TEST_DATABASE_DSN="host=localhost user=postgres password=postgres dbname=attendance_test port=5432 sslmode=disable" \
//	go test -tags=integration ./internal/repository/
package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"attendance-hub/backend/internal/model"
	pkgerrors "attendance-hub/backend/pkg/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("未设置 TEST_DATABASE_DSN，跳过集成测试")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	// 每个用例独立建表，结束后清理
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		t.Fatalf("启用 pgcrypto 失败: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.AttendanceRecord{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	t.Cleanup(func() {
		db.Exec(`DROP TABLE IF EXISTS attendance_records`)
		db.Exec(`DROP TABLE IF EXISTS users`)
	})

	return db
}

func createTestUser(t *testing.T, repo UserRepository, username, role string) *model.User {
	t.Helper()

	user := &model.User{
		Username:     username,
		PasswordHash: "$2a$04$test",
		Role:         role,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}
	return user
}

func TestUserRepo_DuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepo(db)

	createTestUser(t, repo, "alice", model.RoleUser)

	// 唯一索引兜底：同名插入翻译为 ErrDuplicateKey
	err := repo.Create(context.Background(), &model.User{
		Username:     "alice",
		PasswordHash: "$2a$04$test",
		Role:         model.RoleUser,
	})
	if !errors.Is(err, pkgerrors.ErrDuplicateKey) {
		t.Errorf("同名插入应返回 ErrDuplicateKey, 实际: %v", err)
	}
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepo(db)

	_, err := repo.GetByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("查询不存在的用户应返回 ErrRecordNotFound, 实际: %v", err)
	}
}

func TestUserRepo_ListByRole(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepo(db)

	createTestUser(t, repo, "bob", model.RoleUser)
	createTestUser(t, repo, "alice", model.RoleUser)
	createTestUser(t, repo, "root", model.RoleAdmin)

	users, err := repo.ListByRole(context.Background(), model.RoleUser)
	if err != nil {
		t.Fatalf("ListByRole 失败: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len = %d, 期望 2", len(users))
	}
	if users[0].Username != "alice" || users[1].Username != "bob" {
		t.Errorf("应按用户名升序: %s, %s", users[0].Username, users[1].Username)
	}
}

func TestAttendanceRepo_DuplicateSameDay(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepo(db)
	attendance := NewAttendanceRepo(db)

	user := createTestUser(t, users, "alice", model.RoleUser)
	date := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	first := &model.AttendanceRecord{
		UserID:         user.UserID,
		AttendanceDate: date,
		Status:         model.StatusPresent,
	}
	if err := attendance.Create(context.Background(), first); err != nil {
		t.Fatalf("首次插入应成功: %v", err)
	}

	// (user_id, attendance_date) 唯一索引兜底
	err := attendance.Create(context.Background(), &model.AttendanceRecord{
		UserID:         user.UserID,
		AttendanceDate: date,
		Status:         model.StatusAbsent,
	})
	if !errors.Is(err, pkgerrors.ErrDuplicateKey) {
		t.Errorf("同人同日二次插入应返回 ErrDuplicateKey, 实际: %v", err)
	}
}

func TestAttendanceRepo_ListInRange(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepo(db)
	attendance := NewAttendanceRepo(db)

	user := createTestUser(t, users, "alice", model.RoleUser)

	for _, day := range []int{1, 15, 31} {
		err := attendance.Create(context.Background(), &model.AttendanceRecord{
			UserID:         user.UserID,
			AttendanceDate: time.Date(2026, 8, day, 0, 0, 0, 0, time.UTC),
			Status:         model.StatusPresent,
		})
		if err != nil {
			t.Fatalf("插入记录失败 (day=%d): %v", day, err)
		}
	}

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC) // 闭开区间，不含 8-31

	records, err := attendance.ListInRange(context.Background(), &start, &end)
	if err != nil {
		t.Fatalf("ListInRange 失败: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, 期望 2", len(records))
	}
	// 联表用户名
	if records[0].User == nil || records[0].User.Username != "alice" {
		t.Errorf("ListInRange 应预加载用户: %+v", records[0].User)
	}
	// 日期倒序
	if !records[0].AttendanceDate.After(records[1].AttendanceDate) {
		t.Errorf("应按日期倒序: %v, %v", records[0].AttendanceDate, records[1].AttendanceDate)
	}
}

func TestAttendanceRepo_ExistsForUserOnDate(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepo(db)
	attendance := NewAttendanceRepo(db)

	user := createTestUser(t, users, "alice", model.RoleUser)
	date := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	exists, err := attendance.ExistsForUserOnDate(context.Background(), user.UserID, date)
	if err != nil {
		t.Fatalf("ExistsForUserOnDate 失败: %v", err)
	}
	if exists {
		t.Error("未标记时应返回 false")
	}

	if err := attendance.Create(context.Background(), &model.AttendanceRecord{
		UserID:         user.UserID,
		AttendanceDate: date,
		Status:         model.StatusPresent,
	}); err != nil {
		t.Fatalf("插入记录失败: %v", err)
	}

	exists, err = attendance.ExistsForUserOnDate(context.Background(), user.UserID, date)
	if err != nil {
		t.Fatalf("ExistsForUserOnDate 失败: %v", err)
	}
	if !exists {
		t.Error("已标记时应返回 true")
	}
}

func TestAttendanceRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepo(db)
	attendance := NewAttendanceRepo(db)

	user := createTestUser(t, users, "alice", model.RoleUser)

	record := &model.AttendanceRecord{
		UserID:         user.UserID,
		AttendanceDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Status:         model.StatusPresent,
	}
	if err := attendance.Create(context.Background(), record); err != nil {
		t.Fatalf("插入记录失败: %v", err)
	}

	if err := attendance.Delete(context.Background(), record.RecordID); err != nil {
		t.Fatalf("删除应成功: %v", err)
	}

	// 二次删除：记录已不存在
	err := attendance.Delete(context.Background(), record.RecordID)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("二次删除应返回 ErrRecordNotFound, 实际: %v", err)
	}
}
