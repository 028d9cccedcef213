package execution

import (
	"testing"

	"main/internal/model"
	"main/internal/model/enum"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTokenExactLabel(t *testing.T) {
	m := model.Market{
		TokenIDs: []string{"t-up", "t-down"},
		Outcomes: []string{"Up", "Down"},
	}

	tokenID, outcome, ok := ResolveToken(m, enum.SideUp)
	require.True(t, ok)
	assert.Equal(t, "t-up", tokenID)
	assert.Equal(t, "Up", outcome)

	tokenID, outcome, ok = ResolveToken(m, enum.SideDown)
	require.True(t, ok)
	assert.Equal(t, "t-down", tokenID)
	assert.Equal(t, "Down", outcome)
}

func TestResolveTokenCaseAndWhitespace(t *testing.T) {
	m := model.Market{
		TokenIDs: []string{"t-down", "t-up"},
		Outcomes: []string{" DOWN ", "up"},
	}

	tokenID, _, ok := ResolveToken(m, enum.SideUp)
	require.True(t, ok)
	assert.Equal(t, "t-up", tokenID)
}

func TestResolveTokenSynonyms(t *testing.T) {
	m := model.Market{
		TokenIDs: []string{"t-yes", "t-no"},
		Outcomes: []string{"Yes", "No"},
	}

	tokenID, outcome, ok := ResolveToken(m, enum.SideUp)
	require.True(t, ok)
	assert.Equal(t, "t-yes", tokenID)
	assert.Equal(t, "Yes", outcome)

	tokenID, outcome, ok = ResolveToken(m, enum.SideDown)
	require.True(t, ok)
	assert.Equal(t, "t-no", tokenID)
	assert.Equal(t, "No", outcome)
}

func TestResolveTokenPositionalFallback(t *testing.T) {
	m := model.Market{
		TokenIDs: []string{"t-first", "t-second"},
		Outcomes: []string{"Higher", "Lower"},
	}

	tokenID, outcome, ok := ResolveToken(m, enum.SideUp)
	require.True(t, ok)
	assert.Equal(t, "t-first", tokenID)
	assert.Equal(t, "Higher", outcome)

	tokenID, _, ok = ResolveToken(m, enum.SideDown)
	require.True(t, ok)
	assert.Equal(t, "t-second", tokenID)
}

func TestResolveTokenFailures(t *testing.T) {
	_, _, ok := ResolveToken(model.Market{TokenIDs: []string{"only-one"}}, enum.SideUp)
	assert.False(t, ok)

	_, _, ok = ResolveToken(model.Market{TokenIDs: []string{"a", "b"}, Outcomes: []string{"Up", "Down"}}, enum.Side(0))
	assert.False(t, ok)

	// an empty positional token is not usable
	_, _, ok = ResolveToken(model.Market{TokenIDs: []string{"a", ""}, Outcomes: []string{"Higher", "Lower"}}, enum.SideDown)
	assert.False(t, ok)
}
