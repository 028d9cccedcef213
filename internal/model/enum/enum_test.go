package enum

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAssetAvailability(t *testing.T) {
	for _, asset := range Assets() {
		assert.True(t, asset.IsAvailable())
		assert.NotEqual(t, "UNKNOWN", asset.Name())
	}
	assert.False(t, _asset_beg.IsAvailable())
	assert.False(t, _asset_end.IsAvailable())
}

func TestParseAsset(t *testing.T) {
	asset, ok := ParseAsset(" btc ")
	assert.True(t, ok)
	assert.Equal(t, AssetBTC, asset)

	_, ok = ParseAsset("DOGE")
	assert.False(t, ok)
}

func TestSideFlip(t *testing.T) {
	assert.Equal(t, SideDown, SideUp.Flip())
	assert.Equal(t, SideUp, SideDown.Flip())
	assert.Equal(t, Side(0), Side(0).Flip())
}

func TestDurationClassWindows(t *testing.T) {
	testCases := []struct {
		class    DurationClass
		lifetime time.Duration
		danger   time.Duration
		window   time.Duration
	}{
		{Duration15Min, 15 * time.Minute, 3 * time.Minute, 3 * time.Minute},
		{Duration60Min, time.Hour, 15 * time.Minute, 10 * time.Minute},
		{DurationDaily, 24 * time.Hour, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.class.Name(), func(t *testing.T) {
			assert.Equal(t, tc.lifetime, tc.class.Lifetime())
			assert.Equal(t, tc.danger, tc.class.DangerZone())
			assert.Equal(t, tc.window, tc.class.MomentumWindow())
		})
	}
}
