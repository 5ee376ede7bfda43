// Package quality classifies encode quality from release markers.
// It maps resolution, codec, source and edition tokens into a resolution
// tier, a codec class and a traffic-light color used to rank copies of the
// same title.
package quality

import (
	"strconv"
	"strings"
)

// Tier is a resolution tier derived from the vertical resolution.
type Tier int

const (
	TierUnknown Tier = iota
	TierSD           // below 720
	TierHD           // 720 - 1079
	TierFHD          // 1080 - 2159
	TierUHD          // 2160 and above
)

// TierForHeight maps a vertical resolution to its tier.
func TierForHeight(height int) Tier {
	switch {
	case height <= 0:
		return TierUnknown
	case height < 720:
		return TierSD
	case height < 1080:
		return TierHD
	case height < 2160:
		return TierFHD
	default:
		return TierUHD
	}
}

func (t Tier) String() string {
	switch t {
	case TierSD:
		return "SD"
	case TierHD:
		return "HD"
	case TierFHD:
		return "FHD"
	case TierUHD:
		return "UHD"
	default:
		return "unknown"
	}
}

// Codec is the video codec generation.
type Codec int

const (
	CodecUnknown Codec = iota
	CodecLegacy        // x264, H.264, AVC, DivX, XviD
	CodecModern        // x265, H.265, HEVC, AV1
)

func (c Codec) String() string {
	switch c {
	case CodecLegacy:
		return "legacy"
	case CodecModern:
		return "modern"
	default:
		return "unknown"
	}
}

// Source represents the media source type, ordered by quality.
type Source int

const (
	SourceUnknown Source = iota
	SourceCAM
	SourceTS
	SourceTC
	SourceDVDScr
	SourceDVD
	SourceHDTV
	SourceWEBRip
	SourceWEBDL
	SourceBluRay
	SourceREMUX
)

func (s Source) String() string {
	switch s {
	case SourceCAM:
		return "CAM"
	case SourceTS:
		return "TS"
	case SourceTC:
		return "TC"
	case SourceDVDScr:
		return "DVDScr"
	case SourceDVD:
		return "DVD"
	case SourceHDTV:
		return "HDTV"
	case SourceWEBRip:
		return "WEBRip"
	case SourceWEBDL:
		return "WEB-DL"
	case SourceBluRay:
		return "BluRay"
	case SourceREMUX:
		return "REMUX"
	default:
		return "unknown"
	}
}

// HDRFormat represents HDR format type.
type HDRFormat int

const (
	HDRNone HDRFormat = iota
	HDR10
	HDR10Plus
	DolbyVision
	HLG
)

func (h HDRFormat) String() string {
	switch h {
	case HDR10:
		return "HDR10"
	case HDR10Plus:
		return "HDR10+"
	case DolbyVision:
		return "DV"
	case HLG:
		return "HLG"
	default:
		return ""
	}
}

// Color is the traffic-light rating. Higher is better.
type Color int

const (
	ColorRed Color = iota
	ColorYellow
	ColorGreen
	ColorBlue
)

func (c Color) String() string {
	switch c {
	case ColorBlue:
		return "BLUE"
	case ColorGreen:
		return "GREEN"
	case ColorYellow:
		return "YELLOW"
	default:
		return "RED"
	}
}

// ParseColor converts a color name back to a Color. Unknown names are RED.
func ParseColor(s string) Color {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BLUE":
		return ColorBlue
	case "GREEN":
		return ColorGreen
	case "YELLOW":
		return ColorYellow
	default:
		return ColorRed
	}
}

// ColorFor rates a (tier, codec) pair. UHD is always BLUE. Otherwise the two
// criteria are "tier is FHD" and "codec is modern": both met is GREEN, one
// met is YELLOW, none is RED. Unknown values fail their criterion.
func ColorFor(tier Tier, codec Codec) Color {
	if tier == TierUHD {
		return ColorBlue
	}
	met := 0
	if tier >= TierFHD {
		met++
	}
	if codec == CodecModern {
		met++
	}
	switch met {
	case 2:
		return ColorGreen
	case 1:
		return ColorYellow
	default:
		return ColorRed
	}
}

// Info is the quality classification of one file.
type Info struct {
	Height    int
	Tier      Tier
	Codec     Codec
	CodecName string
	Source    Source
	HDR       HDRFormat
	Edition   string
	Proper    bool
	Color     Color
	// Unknown lists what could not be classified: "resolution" and "codec"
	// when no recognizable marker was present, plus any codec-like tokens
	// that map to neither class.
	Unknown []string
}

// HasUnknown reports whether the resolution or codec could not be classified.
func (i Info) HasUnknown() bool {
	return len(i.Unknown) > 0
}

// Resolution renders the height as "1080p", or "" when unknown.
func (i Info) Resolution() string {
	if i.Height <= 0 {
		return ""
	}
	return strconv.Itoa(i.Height) + "p"
}

// String returns a human-readable quality description.
func (i Info) String() string {
	var parts []string
	if r := i.Resolution(); r != "" {
		parts = append(parts, r)
	}
	if i.Source != SourceUnknown {
		parts = append(parts, i.Source.String())
	}
	if i.CodecName != "" {
		parts = append(parts, i.CodecName)
	}
	if h := i.HDR.String(); h != "" {
		parts = append(parts, h)
	}
	if len(parts) == 0 {
		return "Unknown"
	}
	return strings.Join(parts, " ")
}

// VersionTag renders the distinguishing tag of an alternate version:
// edition, resolution and source, e.g. "Extended 1080p BluRay".
func (i Info) VersionTag() string {
	var parts []string
	if i.Edition != "" {
		parts = append(parts, i.Edition)
	}
	if r := i.Resolution(); r != "" {
		parts = append(parts, r)
	}
	if i.Source != SourceUnknown {
		parts = append(parts, i.Source.String())
	}
	return strings.Join(parts, " ")
}
