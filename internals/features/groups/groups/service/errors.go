package service

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrClubNotFound    = errors.New("club not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrStudentNotFound = errors.New("student not found")
)

// Kode pelanggaran aturan fauj.
const (
	CodeInsufficientStudents = "INSUFFICIENT_STUDENTS"
	CodeGroupNotEmpty        = "GROUP_NOT_EMPTY"
	CodeWouldEmptyGroup      = "WOULD_EMPTY_GROUP"
	CodeUngroupNotAllowed    = "UNGROUP_NOT_ALLOWED"
	CodeScopeMismatch        = "SCOPE_MISMATCH"
	CodeGroupInactive        = "GROUP_INACTIVE"
	CodeSameGroup            = "SAME_GROUP"
	CodeNameTaken            = "GROUP_NAME_TAKEN"
	CodeNameInvalid          = "GROUP_NAME_INVALID"
	CodeAlphabetExhausted    = "ALPHABET_EXHAUSTED"
	CodeGroupStillActive     = "GROUP_STILL_ACTIVE"
)

// GroupRuleError: operasi ditolak sebelum ada mutasi.
type GroupRuleError struct {
	Code      string
	GroupName string
	Message   string
}

func (e *GroupRuleError) Error() string {
	if e.GroupName != "" {
		return fmt.Sprintf("%s (group %s)", e.Message, e.GroupName)
	}
	return e.Message
}

func ruleErr(code, groupName, format string, args ...any) *GroupRuleError {
	return &GroupRuleError{Code: code, GroupName: groupName, Message: fmt.Sprintf(format, args...)}
}

// AsRuleError: helper untuk controller.
func AsRuleError(err error) (*GroupRuleError, bool) {
	var re *GroupRuleError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
