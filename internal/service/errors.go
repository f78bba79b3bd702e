package service

import (
	"errors"
	"fmt"

	"Orion_Tube/pkg/database"

	"gorm.io/gorm"
)

// 业务错误的分类，handler根据它们决定HTTP状态码
var (
	ErrNotFound     = errors.New("资源不存在")
	ErrBadRequest   = errors.New("请求参数错误")
	ErrUnauthorized = errors.New("未授权")
	ErrConflict     = errors.New("资源冲突")
	ErrUnavailable  = errors.New("服务暂不可用")
)

// notFoundOr 把gorm的"记录不存在"翻译成ErrNotFound，其他错误原样返回
func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

// conflictOr 把唯一键冲突翻译成ErrConflict
func conflictOr(err error, what string) error {
	if database.IsDuplicateKey(err) {
		return fmt.Errorf("%w: %s", ErrConflict, what)
	}
	return err
}
