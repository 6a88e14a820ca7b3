package engine

// FogID labels a recognised fog-report endpoint. The table must stay
// in sync with the host wallet.
type FogID uint8

const (
	FogNone FogID = iota
	FogMobMain
	FogMobTest
	FogSignalMain
	FogSignalTest
)

const (
	fogMobMainnetURI    = "fog://fog.prod.mobilecoinww.com"
	fogMobTestnetURI    = "fog://fog.test.mobilecoin.com"
	fogSignalMainnetURI = "fog://fog-rpt-prd.namda.net"
	fogSignalTestnetURI = "fog://fog-rpt-stg.namda.net"
)

// URL resolves the fog id to its report URI.
func (f FogID) URL() string {
	switch f {
	case FogMobMain:
		return fogMobMainnetURI
	case FogMobTest:
		return fogMobTestnetURI
	case FogSignalMain:
		return fogSignalMainnetURI
	case FogSignalTest:
		return fogSignalTestnetURI
	}
	return ""
}

// Label returns the short display name for recognised fogs. Unknown
// targets are labelled "unknown" and force per-recipient review.
func (f FogID) Label() string {
	switch f {
	case FogNone:
		return "none"
	case FogMobMain:
		return "MobileCoin"
	case FogMobTest:
		return "MobileCoin TestNet"
	case FogSignalMain:
		return "Signal"
	case FogSignalTest:
		return "Signal Staging"
	}
	return "unknown"
}

// Known reports whether the fog id is in the recognised table.
func (f FogID) Known() bool {
	return f <= FogSignalTest
}
