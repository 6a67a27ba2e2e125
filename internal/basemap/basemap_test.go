package basemap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	entries := DefaultCatalog()
	require.Len(t, entries, 6)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
		assert.Equal(t, 8, e.Style.Version)
		require.Contains(t, e.Style.Sources, e.ID)
		require.Len(t, e.Style.Layers, 1)
		assert.Equal(t, e.ID, e.Style.Layers[0].Source)
	}
	assert.Equal(t, []string{"1961", "1974", "1979", "1984", "1987", "Today"}, names)
}

func TestStyle_JSONShape(t *testing.T) {
	c, _, err := NewCatalog(DefaultCatalog(), "gsi-gazo1")
	require.NoError(t, err)

	raw, err := json.Marshal(c.Active().Style)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"version": 8,
		"sources": {"gsi-gazo1": {
			"type": "raster",
			"tiles": ["https://cyberjapandata.gsi.go.jp/xyz/gazo1/{z}/{x}/{y}.jpg"],
			"tileSize": 256,
			"attribution": "地理院タイル &copy; <a href=\"https://www.gsi.go.jp/\" target=\"_blank\">国土地理院</a>"
		}},
		"layers": [{"id": "gsi-gazo1-layer", "type": "raster", "source": "gsi-gazo1", "minzoom": 0, "maxzoom": 17}]
	}`, string(raw))
}

func TestNewCatalog_Default(t *testing.T) {
	c, fellBack, err := NewCatalog(DefaultCatalog(), "esri-world-imagery")
	require.NoError(t, err)
	assert.False(t, fellBack)
	assert.Equal(t, "Today", c.Active().Name)
}

func TestNewCatalog_UnknownDefaultFallsBack(t *testing.T) {
	c, fellBack, err := NewCatalog(DefaultCatalog(), "google-satellite")
	require.NoError(t, err)
	assert.True(t, fellBack)
	assert.Equal(t, "gsi-ort-old10", c.Active().ID)
}

func TestNewCatalog_Empty(t *testing.T) {
	_, _, err := NewCatalog(nil, "x")
	require.Error(t, err)
}

func TestCatalog_Switch(t *testing.T) {
	c, _, err := NewCatalog(DefaultCatalog(), "esri-world-imagery")
	require.NoError(t, err)

	d, changed, err := c.Switch("gsi-gazo3")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "1984", d.Name)
	assert.Equal(t, "gsi-gazo3", c.Active().ID)

	_, changed, err = c.Switch("gsi-gazo3")
	require.NoError(t, err)
	assert.False(t, changed)

	_, _, err = c.Switch("nope")
	require.ErrorIs(t, err, ErrUnknownBasemap)
	assert.Equal(t, "gsi-gazo3", c.Active().ID)
}

func TestCatalog_EntriesIsACopy(t *testing.T) {
	c, _, err := NewCatalog(DefaultCatalog(), "")
	require.NoError(t, err)

	entries := c.Entries()
	entries[0].Name = "changed"
	d, ok := c.Lookup("gsi-ort-old10")
	require.True(t, ok)
	assert.Equal(t, "1961", d.Name)
}
