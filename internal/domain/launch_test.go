package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCategories(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    CategoryList
		wantErr error
	}{
		{name: "single", input: []string{"AI"}, want: CategoryList{"ai"}},
		{name: "spaces become dashes", input: []string{"  Developer   Tools "}, want: CategoryList{"developer-tools"}},
		{name: "dedupe keeps first", input: []string{"SaaS", "ai", "saas"}, want: CategoryList{"saas", "ai"}},
		{name: "blank entries dropped", input: []string{"", " ", "ai"}, want: CategoryList{"ai"}},
		{name: "empty", input: nil, wantErr: ErrNoCategories},
		{name: "too many", input: []string{"a", "b", "c", "d"}, wantErr: ErrTooManyCategories},
		{name: "three after dedupe", input: []string{"a", "b", "A", "c"}, want: CategoryList{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeCategories(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategoryList_UnmarshalJSON(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		var c CategoryList
		require.NoError(t, json.Unmarshal([]byte(`"Productivity"`), &c))
		assert.Equal(t, CategoryList{"Productivity"}, c)
	})

	t.Run("array", func(t *testing.T) {
		var c CategoryList
		require.NoError(t, json.Unmarshal([]byte(`["ai","dev tools"]`), &c))
		assert.Equal(t, CategoryList{"ai", "dev tools"}, c)
	})

	t.Run("number is rejected", func(t *testing.T) {
		var c CategoryList
		assert.Error(t, json.Unmarshal([]byte(`42`), &c))
	})

	t.Run("inside a struct", func(t *testing.T) {
		var body struct {
			Category CategoryList `json:"category"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"category":"ai"}`), &body))
		assert.True(t, body.Category.Contains("AI"))
	})
}

func TestLaunch_Ownership(t *testing.T) {
	owner := int64(5)
	key := "secret"

	imported := &Launch{ClaimKey: &key}
	assert.True(t, imported.IsClaimable())
	assert.False(t, imported.IsOwnedBy(5))

	owned := &Launch{UserID: &owner, ClaimKey: &key}
	assert.False(t, owned.IsClaimable())
	assert.True(t, owned.IsOwnedBy(5))
	assert.False(t, owned.IsOwnedBy(6))
}

func TestLaunchFilter_Offset(t *testing.T) {
	assert.Equal(t, 0, LaunchFilter{Page: 1, Limit: 12}.Offset())
	assert.Equal(t, 24, LaunchFilter{Page: 3, Limit: 12}.Offset())
	assert.Equal(t, 0, LaunchFilter{Page: 0, Limit: 12}.Offset())
}
