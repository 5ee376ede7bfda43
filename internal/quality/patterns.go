package quality

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	heightRegex    = regexp.MustCompile(`(?i)^(\d{3,4})[pi]$`)
	dimensionRegex = regexp.MustCompile(`(?i)^\d{3,4}x(\d{3,4})$`)
)

var namedHeights = map[string]int{
	"sd":  480,
	"fhd": 1080,
	"qhd": 1440,
	"uhd": 2160,
	"4k":  2160,
	"8k":  4320,
}

var codecClasses = map[string]Codec{
	"x264": CodecLegacy,
	"h264": CodecLegacy,
	"avc":  CodecLegacy,
	"divx": CodecLegacy,
	"xvid": CodecLegacy,
	"x265": CodecModern,
	"h265": CodecModern,
	"hevc": CodecModern,
	"av1":  CodecModern,
	"x266": CodecModern,
	"h266": CodecModern,
}

// Bit-depth markers share the codec class but say nothing about the codec.
var codecNeutral = map[string]bool{
	"8bit": true, "10bit": true, "12bit": true, "10bits": true,
}

var sourceClasses = map[string]Source{
	"remux":    SourceREMUX,
	"bdremux":  SourceREMUX,
	"bluray":   SourceBluRay,
	"bdrip":    SourceBluRay,
	"brrip":    SourceBluRay,
	"uhdrip":   SourceBluRay,
	"bdmv":     SourceBluRay,
	"bd":       SourceBluRay,
	"webdl":    SourceWEBDL,
	"webrip":   SourceWEBRip,
	"web":      SourceWEBRip,
	"hdrip":    SourceWEBRip,
	"hdtv":     SourceHDTV,
	"pdtv":     SourceHDTV,
	"sdtv":     SourceHDTV,
	"dvdrip":   SourceDVD,
	"dvd":      SourceDVD,
	"dvd5":     SourceDVD,
	"dvd9":     SourceDVD,
	"dvdscr":   SourceDVDScr,
	"scr":      SourceDVDScr,
	"r5":       SourceDVDScr,
	"tc":       SourceTC,
	"telecine": SourceTC,
	"ts":       SourceTS,
	"hdts":     SourceTS,
	"telesync": SourceTS,
	"cam":      SourceCAM,
	"camrip":   SourceCAM,
	"hdcam":    SourceCAM,
}

var hdrFormats = map[string]HDRFormat{
	"hdr":         HDR10,
	"hdr10":       HDR10,
	"hdr10plus":   HDR10Plus,
	"dolbyvision": DolbyVision,
	"dovi":        DolbyVision,
	"dv":          DolbyVision,
	"hlg":         HLG,
}

var editionLabels = map[string]string{
	"extended":     "Extended",
	"unrated":      "Unrated",
	"uncut":        "Uncut",
	"remastered":   "Remastered",
	"theatrical":   "Theatrical",
	"directorscut": "Director's Cut",
	"dc":           "Director's Cut",
	"criterion":    "Criterion",
	"imax":         "IMAX",
	"special":      "Special Edition",
}

func parseHeight(lower string) (int, bool) {
	if m := heightRegex.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		return h, true
	}
	if m := dimensionRegex.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		return h, true
	}
	h, ok := namedHeights[strings.ToLower(lower)]
	return h, ok
}
