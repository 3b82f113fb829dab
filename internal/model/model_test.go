package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/okiim/libris/internal/model"
)

func TestMemberType_Policy(t *testing.T) {
	t.Parallel()
	var tests = []struct {
		memberType    model.MemberType
		maxBooks      int
		borrowingDays int
		codePrefix    string
	}{
		{model.MemberTypeFaculty, 10, 30, "FAC"},
		{model.MemberTypeStaff, 7, 21, "STA"},
		{model.MemberTypePublic, 3, 7, "PUB"},
		{model.MemberTypeStudent, 5, 14, "STU"},
		{model.MemberType(""), 5, 14, ""}, // unknown types fall back to student limits
	}
	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.memberType), func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.maxBooks, tt.memberType.MaxBooks())
			require.Equal(t, tt.borrowingDays, tt.memberType.BorrowingDays())
			require.Equal(t, tt.codePrefix, tt.memberType.CodePrefix())
		})
	}
}

func TestBorrowStatus_Active(t *testing.T) {
	t.Parallel()
	require.True(t, model.StatusBorrowed.Active())
	require.True(t, model.StatusOverdue.Active())
	require.False(t, model.StatusReturned.Active())
}

func TestDate_JSON(t *testing.T) {
	t.Parallel()

	var d model.Date
	require.NoError(t, json.Unmarshal([]byte(`"2026-03-15"`), &d))
	require.Equal(t, 2026, d.Year())
	require.Equal(t, 15, d.Day())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	require.Equal(t, `"2026-03-15"`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	require.True(t, d.IsZero())

	out, err = json.Marshal(model.Date{})
	require.NoError(t, err)
	require.Equal(t, `null`, string(out))

	require.Error(t, json.Unmarshal([]byte(`"15/03/2026"`), &d))
}
