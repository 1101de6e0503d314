package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrAlreadyExists 唯一约束命中（重复关注、重复点赞、重复加入……）
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
	// ErrSelfReference 自己关注自己
	ErrSelfReference = errors.New("self reference not allowed")
	ErrForbidden     = errors.New("forbidden")
	// ErrStorageUnavailable 存储层故障，事务已回滚，调用方可重试
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// wrapErr 领域错误原样返回，记录缺失映射为 ErrNotFound，其余一律视为存储不可用
func wrapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrSelfReference),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrStorageUnavailable):
		return err
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
