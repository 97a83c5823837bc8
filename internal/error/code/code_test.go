package code

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEveryCodeHasMessageAndStatus(t *testing.T) {
	for c := range codeMessageMap {
		_, ok := codeStatusMap[c]
		assert.True(t, ok, "code %d has a message but no status", c)
	}
	for c := range codeStatusMap {
		_, ok := codeMessageMap[c]
		assert.True(t, ok, "code %d has a status but no message", c)
	}
}

func TestGetStatus(t *testing.T) {
	assert.Equal(t, StatusUnauthorized, GetStatus(ErrNotAuthenticated))
	assert.Equal(t, StatusForbidden, GetStatus(ErrPermissionDenied))
	assert.Equal(t, StatusNotFound, GetStatus(ErrResidentNotFound))
	assert.Equal(t, StatusBadRequest, GetStatus(ErrUserAlreadyExist))
	assert.Equal(t, StatusInternalServerError, GetStatus(-1))
	assert.Equal(t, "未知错误", GetMessage(-1))
}
