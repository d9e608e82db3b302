package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"attendance-hub/backend/internal/model"
	pkgerrors "attendance-hub/backend/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id 与 username 双索引
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) put(user *model.User) {
	m.users[user.UserID] = user
	m.users["name:"+user.Username] = user
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if _, ok := m.users["name:"+user.Username]; ok {
		// 模拟 uq_users_username 唯一索引
		return pkgerrors.ErrDuplicateKey
	}
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	m.put(user)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if u, ok := m.users["name:"+username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	result := m.collect(func(u *model.User) bool { return u.Role == role })
	return result, nil
}

func (m *mockUserRepo) ListAll(_ context.Context) ([]model.User, error) {
	return m.collect(func(*model.User) bool { return true }), nil
}

func (m *mockUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	return int64(len(m.collect(func(u *model.User) bool { return u.Role == role }))), nil
}

// collect 去重收集并按用户名排序（与 GORM 实现的 ORDER BY username 一致）
func (m *mockUserRepo) collect(match func(*model.User) bool) []model.User {
	seen := make(map[string]bool)
	var result []model.User
	for _, u := range m.users {
		if !seen[u.UserID] && match(u) {
			seen[u.UserID] = true
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records map[string]*model.AttendanceRecord
	users   *mockUserRepo // 联表用户名
	seq     int
}

func newMockAttendanceRepo(users *mockUserRepo) *mockAttendanceRepo {
	return &mockAttendanceRepo{
		records: make(map[string]*model.AttendanceRecord),
		users:   users,
	}
}

func dayKey(userID string, date time.Time) string {
	return userID + ":" + date.Format("2006-01-02")
}

func (m *mockAttendanceRepo) Create(_ context.Context, record *model.AttendanceRecord) error {
	for _, r := range m.records {
		if dayKey(r.UserID, r.AttendanceDate) == dayKey(record.UserID, record.AttendanceDate) {
			// 模拟 uq_attendance_user_date 唯一索引
			return pkgerrors.ErrDuplicateKey
		}
	}
	if record.RecordID == "" {
		m.seq++
		record.RecordID = fmt.Sprintf("record-%d", m.seq)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	m.records[record.RecordID] = record
	return nil
}

func (m *mockAttendanceRepo) GetByID(_ context.Context, id string) (*model.AttendanceRecord, error) {
	if r, ok := m.records[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) ExistsForUserOnDate(_ context.Context, userID string, date time.Time) (bool, error) {
	for _, r := range m.records {
		if dayKey(r.UserID, r.AttendanceDate) == dayKey(userID, date) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAttendanceRepo) ListByUser(_ context.Context, userID string) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.UserID == userID {
			result = append(result, *r)
		}
	}
	sortRecordsDesc(result)
	return result, nil
}

func (m *mockAttendanceRepo) ListInRange(_ context.Context, start, end *time.Time) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if start != nil && r.AttendanceDate.Before(*start) {
			continue
		}
		if end != nil && !r.AttendanceDate.Before(*end) {
			continue
		}
		rec := *r
		// 模拟 Preload("User")
		if m.users != nil {
			if u, ok := m.users.users[rec.UserID]; ok {
				rec.User = u
			}
		}
		result = append(result, rec)
	}
	sortRecordsDesc(result)
	return result, nil
}

func (m *mockAttendanceRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.records, id)
	return nil
}

// sortRecordsDesc 按日期倒序、同日按创建时间倒序（与 GORM 实现的 ORDER BY 一致）
func sortRecordsDesc(records []model.AttendanceRecord) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].AttendanceDate.Equal(records[j].AttendanceDate) {
			return records[i].AttendanceDate.After(records[j].AttendanceDate)
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}
