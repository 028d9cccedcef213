package enum

import "strings"

// Asset identifies an underlying crypto asset tracked by the engine.
type Asset uint8

const (
	_asset_beg Asset = iota
	AssetBTC
	AssetETH
	AssetSOL
	AssetXRP
	_asset_end
)

// AssetCount is the number of valid assets, used to size per-asset arrays.
const AssetCount = int(_asset_end)

func (a Asset) IsAvailable() bool {
	return a > _asset_beg && a < _asset_end
}

func (a Asset) Name() string {
	switch a {
	case AssetBTC:
		return "BTC"
	case AssetETH:
		return "ETH"
	case AssetSOL:
		return "SOL"
	case AssetXRP:
		return "XRP"
	default:
		return "UNKNOWN"
	}
}

// ParseAsset resolves an asset from its short name.
func ParseAsset(name string) (Asset, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "BTC":
		return AssetBTC, true
	case "ETH":
		return AssetETH, true
	case "SOL":
		return AssetSOL, true
	case "XRP":
		return AssetXRP, true
	default:
		return _asset_beg, false
	}
}

// Assets returns all valid assets in declaration order.
func Assets() []Asset {
	return []Asset{AssetBTC, AssetETH, AssetSOL, AssetXRP}
}
