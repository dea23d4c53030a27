package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	pkg, ok := Lookup("professionnel")
	require.True(t, ok)
	assert.Equal(t, int64(249000), pkg.Price)
	assert.Equal(t, "EUR", pkg.Currency)
	assert.Equal(t, ProjectTypeProfessionnel, pkg.ProjectType)

	_, ok = Lookup("premium")
	assert.False(t, ok)
}

func TestLookup_CaseInsensitive(t *testing.T) {
	pkg, ok := Lookup("  BOUTIQUE ")
	require.True(t, ok)
	assert.Equal(t, "boutique", pkg.ID)
	assert.Equal(t, ProjectTypeEcommerce, pkg.ProjectType)
}

func TestTimelineDays(t *testing.T) {
	assert.Equal(t, 10, TimelineDays("essentiel"))
	assert.Equal(t, 14, TimelineDays("professionnel"))
	assert.Equal(t, 21, TimelineDays("boutique"))
	assert.Equal(t, 21, TimelineDays("unknown"), "unknown falls back to the longest tier")
}

func TestIDs(t *testing.T) {
	for _, id := range IDs() {
		pkg, ok := Lookup(id)
		require.True(t, ok, id)
		assert.Positive(t, pkg.Price, id)
		assert.NotEmpty(t, pkg.ProjectType, id)
	}
}
