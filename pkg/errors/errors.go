package errors

import "errors"

// ErrDuplicateKey 存储层唯一约束冲突：同名用户或同日重复考勤
var ErrDuplicateKey = errors.New("记录已存在，唯一约束冲突")
