package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrStorageSaveFailed, "save users", cause)

	assert.Equal(t, "[storage_save_failed] save users: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[invalid_parameter] bad pin", New(ErrInvalidParameter, "bad pin").Error())
	assert.Equal(t, "code_9999", ErrorCode(9999).String())
}

func TestIsErrCode(t *testing.T) {
	inner := New(ErrStorageNotFound, "users.json")
	outer := Wrap(ErrStorageLoadFailed, "load users", inner)
	wrapped := fmt.Errorf("startup: %w", outer)

	testCases := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{name: "外层错误码", err: wrapped, code: ErrStorageLoadFailed, want: true},
		{name: "内层错误码", err: wrapped, code: ErrStorageNotFound, want: true},
		{name: "不存在的错误码", err: wrapped, code: ErrPublishFailed, want: false},
		{name: "普通错误", err: errors.New("plain"), code: ErrUnknown, want: false},
		{name: "空错误", err: nil, code: ErrUnknown, want: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsErrCode(tc.err, tc.code))
		})
	}

	assert.Equal(t, ErrStorageLoadFailed, CodeOf(wrapped))
	assert.Equal(t, ErrUnknown, CodeOf(errors.New("plain")))
}
