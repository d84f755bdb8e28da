package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fluxori-systems/fluxori-sub012/pkg/logger"
)

func TestError(t *testing.T) {
	t.Parallel()

	t.Run("nil error yields empty attr", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, slog.Attr{}, logger.Error(nil))
	})

	t.Run("non-nil error", func(t *testing.T) {
		t.Parallel()

		err := errors.New("boom")
		attr := logger.Error(err)
		assert.Equal(t, "error", attr.Key)
	})
}

func TestErrors(t *testing.T) {
	t.Parallel()

	t.Run("all nil yields empty attr", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, slog.Attr{}, logger.Errors(nil, nil))
	})

	t.Run("mixed errors are grouped", func(t *testing.T) {
		t.Parallel()

		attr := logger.Errors(errors.New("a"), nil, errors.New("b"))
		assert.Equal(t, "errors", attr.Key)
		assert.Len(t, attr.Value.Group(), 2)
	})
}

func TestDomainAttrs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		attr slog.Attr
		key  string
	}{
		{name: "flag key", attr: logger.FlagKey("new-checkout"), key: "flag_key"},
		{name: "flag id", attr: logger.FlagID("0f1e"), key: "flag_id"},
		{name: "actor", attr: logger.Actor("alice"), key: "actor"},
		{name: "action", attr: logger.Action("toggled"), key: "action"},
		{name: "user id", attr: logger.UserID("u-1"), key: "user_id"},
		{name: "organization id", attr: logger.OrganizationID("o-1"), key: "organization_id"},
		{name: "duration", attr: logger.Duration(time.Second), key: "duration"},
		{name: "component", attr: logger.Component("cache"), key: "component"},
		{name: "count", attr: logger.Count(3), key: "count"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.key, tt.attr.Key)
		})
	}

	t.Run("nil ids yield empty attrs", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, slog.Attr{}, logger.FlagID(nil))
		assert.Equal(t, slog.Attr{}, logger.UserID(nil))
		assert.Equal(t, slog.Attr{}, logger.OrganizationID(nil))
	})
}
