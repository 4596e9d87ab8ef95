package errors_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	svcErr "github.com/cutmatch/cutmatch-api/internal/errors"
)

func TestMap(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load post: %w", gorm.ErrRecordNotFound), http.StatusNotFound},
		{"duplicate", gorm.ErrDuplicatedKey, http.StatusBadRequest},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"canceled", context.Canceled, svcErr.StatusClientClosedRequest},
		{"api error kept", svcErr.Forbidden("nope"), http.StatusForbidden},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svcErr.From(tt.err)
			assert.Equal(t, tt.status, got.Status)
		})
	}
}

func TestMap_Nil(t *testing.T) {
	assert.NoError(t, svcErr.Map(nil))
}

func TestAPIError_StackAndMessage(t *testing.T) {
	err := svcErr.Internal(errors.New("db exploded"))

	assert.Equal(t, "db exploded", err.Message)
	assert.Contains(t, err.Stack(), "db exploded")
	assert.Contains(t, err.Stack(), "mapper_test.go")
}
