package model_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"demo/interview/internal/model"

	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := model.ParseDate("start_date", "2024-02-29")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"2024-13-01", "2023-02-29", "2024/01/01", "24-01-01", "", "2024-01-01T00:00:00Z"} {
		_, err := model.ParseDate("embargo_date", bad)
		require.ErrorIs(t, err, model.ErrInvalidDateFormat, bad)
		require.Contains(t, err.Error(), "embargo_date")
	}
}

func TestOrderMarshalJSON(t *testing.T) {
	o := model.Order{
		ID:        "o1",
		StartDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		IsActive:  true,
	}
	b, err := json.Marshal(o)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	require.Equal(t, "2024-05-01", got["start_date"])
	require.Equal(t, true, got["is_active"])
	require.Equal(t, []any{}, got["tags"])
}

func TestValidationError(t *testing.T) {
	err := error(&model.ValidationError{Fields: map[string]string{"b": "bad", "a": "required"}})
	require.True(t, errors.Is(err, model.ErrValidation))
	require.Equal(t, "validation failed: a: required; b: bad", err.Error())

	var ve *model.ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Fields, 2)
}

func TestUserProfileFullName(t *testing.T) {
	p := model.UserProfile{Email: "ann@example.com", FirstName: "Ann", LastName: "Lee"}
	require.Equal(t, "Ann Lee", p.FullName())
	require.Equal(t, "ann@example.com", p.String())

	p.FirstName, p.LastName = "", "  "
	require.Equal(t, "ann@example.com", p.FullName())

	p.FirstName = "Ann"
	require.Equal(t, "Ann", p.FullName())
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "John.Doe@example.com", model.NormalizeEmail("  John.Doe@EXAMPLE.Com "))
	require.Equal(t, "no-at-sign", model.NormalizeEmail("no-at-sign"))
}

func TestProfileFilterMatch(t *testing.T) {
	yes, no := true, false
	p := model.UserProfile{Email: "ann@example.com", FirstName: "Ann", Username: "annie", IsActive: true, IsStaff: true}

	require.True(t, model.ProfileFilter{}.Match(p))
	require.True(t, model.ProfileFilter{Search: "ANNIE"}.Match(p))
	require.True(t, model.ProfileFilter{Search: "example", IsStaff: &yes}.Match(p))
	require.False(t, model.ProfileFilter{IsStaff: &no}.Match(p))
	require.False(t, model.ProfileFilter{IsSuperuser: &yes}.Match(p))
	require.False(t, model.ProfileFilter{Search: "bob"}.Match(p))
}
