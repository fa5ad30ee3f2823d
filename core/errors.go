package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 错误分级（对应请求边界的处理方式）：
//   - INVALID_REQUEST：客户端错误（空团体、畸形评分），拒绝且不重试
//   - UNAVAILABLE：评分存储不可达，请求级致命，调用方可整体重试
//   - NOT_FOUND：资源不存在（电影元信息缺失等）
type DomainError struct {
	Code    string // 错误代码（如 "INVALID_REQUEST", "UNAVAILABLE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "recall", "service"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 获取 DomainError（支持 %w 包装链），如果不是则返回 nil。
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误。
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound       = "NOT_FOUND"       // 资源不存在
	ErrorCodeNotSupported   = "NOT_SUPPORTED"   // 操作不支持
	ErrorCodeUnavailable    = "UNAVAILABLE"     // 存储/服务不可用
	ErrorCodeInvalidRequest = "INVALID_REQUEST" // 请求无效
	ErrorCodeInternalError  = "INTERNAL_ERROR"  // 内部错误
)

// 模块名称常量
const (
	ModuleStore    = "store"    // 存储模块
	ModuleRatings  = "ratings"  // 评分模块
	ModuleRecall   = "recall"   // 召回/打分模块
	ModuleMetadata = "metadata" // 电影元信息模块
	ModuleService  = "service"  // 请求边界模块
)

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND。
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsNotSupported 检查错误是否为 NOT_SUPPORTED。
func IsNotSupported(err error) bool { return hasCode(err, ErrorCodeNotSupported) }

// IsUnavailable 检查错误是否为 UNAVAILABLE。
func IsUnavailable(err error) bool { return hasCode(err, ErrorCodeUnavailable) }

// IsInvalidRequest 检查错误是否为 INVALID_REQUEST。
func IsInvalidRequest(err error) bool { return hasCode(err, ErrorCodeInvalidRequest) }

// 领域错误定义

var (
	// ErrEmptyGroup 表示请求没有任何团体成员，计算前即被拒绝。
	ErrEmptyGroup = NewDomainError(ModuleRecall, ErrorCodeInvalidRequest, "recall: group has no members")

	// ErrMovieNotFound 表示电影元信息不存在。
	ErrMovieNotFound = NewDomainError(ModuleMetadata, ErrorCodeNotFound, "metadata: movie not found")
)
