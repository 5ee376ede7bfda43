package naming

import (
	"regexp"
	"strings"
)

// Vocabulary holds the known-junk and scene-group word lists used by the
// tokenizer. Strong junk is always junk; weak junk words double as ordinary
// English words and only count as junk next to other release markers.
type Vocabulary struct {
	strong map[string]JunkClass
	weak   map[string]JunkClass
	groups map[string]bool
}

var (
	resolutionTokenRegex = regexp.MustCompile(`(?i)^(\d{3,4}[pi]|[48]k|uhd|\d{3,4}x\d{3,4})$`)
	codecTokenRegex      = regexp.MustCompile(`(?i)^[xh]\.?26[4-6]$`)
	bitDepthTokenRegex   = regexp.MustCompile(`(?i)^\d{1,2}bits?$`)
	channelsTokenRegex   = regexp.MustCompile(`(?i)^(ddp?|e?ac3|aac|dts|truehd|flac|opus|pcm|atmos)?[1-9][01]ch$`)
	versionTokenRegex    = regexp.MustCompile(`(?i)^v[2-9]$`)
	discTokenRegex       = regexp.MustCompile(`(?i)^(cd|dvd|disc|disk)[1-9]$`)
)

var defaultStrongJunk = map[JunkClass][]string{
	JunkResolution: {"sd", "fhd", "qhd"},
	JunkCodec: {
		"x264", "x265", "x266", "h264", "h265", "h266", "hevc", "avc", "av1",
		"divx", "xvid", "mpeg2", "mpeg4", "vc1", "vp9", "10bit", "8bit",
	},
	JunkSource: {
		"bluray", "bdrip", "brrip", "bdremux", "remux", "webdl", "webrip", "hdtv",
		"pdtv", "sdtv", "dvdrip", "dvd", "dvdscr", "dvd5", "dvd9", "hdrip", "hdcam",
		"camrip", "telesync", "telecine", "hdts", "uhdrip", "bdmv", "vhsrip", "r5",
	},
	JunkAudio: {
		"aac", "ac3", "eac3", "ddp", "dts", "dtshd", "dtshdma", "dtsx", "dtses",
		"truehd", "atmos", "flac", "opus", "lpcm", "mp3", "dualaudio",
	},
	JunkHDR: {"hdr", "hdr10", "hdr10plus", "dolbyvision", "dovi", "hlg", "sdr"},
	JunkEdition: {
		"extended", "unrated", "uncut", "remastered", "theatrical", "directorscut",
		"criterion", "imax",
	},
	JunkRelease: {
		"proper", "repack", "rerip", "internal", "limited", "readnfo", "nfofix",
		"dubbed", "subbed", "multi", "multisub", "msubs", "retail", "hardcoded",
	},
	JunkLocale: {
		"eng", "ita", "fre", "fra", "ger", "spa", "esp", "nordic", "vostfr",
		"truefrench", "hindi", "jap", "kor", "rus",
	},
	JunkPlatform: {"amzn", "nf", "dsnp", "hmax", "hulu", "atvp", "pcok", "pmtp", "crav", "itunes"},
	JunkOther:    {"sbs", "hsbs", "hou"},
}

var defaultWeakJunk = map[JunkClass][]string{
	JunkOther:      {"hd", "3d", "ou"},
	JunkSource:     {"web", "cam", "ts", "tc", "bd", "scr"},
	JunkAudio:      {"dd", "ma", "pcm", "stereo", "mono"},
	JunkHDR:        {"dv"},
	JunkEdition:    {"dc", "special", "edition", "cut", "directors"},
	JunkRelease:    {"complete", "dl", "dual", "sub", "subs", "dub", "hc", "forced", "sdh", "line", "rip"},
	JunkLocale:     {"english", "french", "german", "italian", "spanish", "latino", "en", "es", "de", "fr"},
	JunkPlatform:   {"max", "stan"},
}

var defaultGroups = []string{
	"rarbg", "yify", "yts", "eztv", "ettv", "tgx", "psa", "qxr", "tigole", "ntb",
	"ntg", "fgt", "mkvcage", "ganool", "shaanig", "galaxyrg", "pahe", "ion10",
	"cmrg", "ctrlhd", "framestor", "tepes", "megusta", "rartv", "torrentgalaxy",
}

// DefaultVocabulary returns a fresh copy of the built-in word lists.
func DefaultVocabulary() *Vocabulary {
	v := &Vocabulary{
		strong: make(map[string]JunkClass),
		weak:   make(map[string]JunkClass),
		groups: make(map[string]bool),
	}
	for class, words := range defaultStrongJunk {
		for _, w := range words {
			v.strong[w] = class
		}
	}
	for class, words := range defaultWeakJunk {
		for _, w := range words {
			v.weak[w] = class
		}
	}
	for _, g := range defaultGroups {
		v.groups[g] = true
	}
	return v
}

// AddJunk registers extra strong junk words (case-insensitive).
func (v *Vocabulary) AddJunk(words ...string) {
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			v.strong[w] = JunkOther
		}
	}
}

// AddGroups registers extra scene-group signatures (case-insensitive).
func (v *Vocabulary) AddGroups(groups ...string) {
	for _, g := range groups {
		g = strings.ToLower(strings.TrimSpace(g))
		if g != "" {
			v.groups[g] = true
		}
	}
}

// strongClass returns the junk class of a word that is always junk.
func (v *Vocabulary) strongClass(lower string) (JunkClass, bool) {
	switch {
	case resolutionTokenRegex.MatchString(lower):
		return JunkResolution, true
	case codecTokenRegex.MatchString(lower):
		return JunkCodec, true
	case bitDepthTokenRegex.MatchString(lower):
		return JunkCodec, true
	case channelsTokenRegex.MatchString(lower):
		return JunkAudio, true
	case versionTokenRegex.MatchString(lower), discTokenRegex.MatchString(lower):
		return JunkRelease, true
	}
	c, ok := v.strong[lower]
	return c, ok
}

func (v *Vocabulary) weakClass(lower string) (JunkClass, bool) {
	c, ok := v.weak[lower]
	return c, ok
}

// IsKnownJunk reports whether a word is in either junk list.
func (v *Vocabulary) IsKnownJunk(word string) bool {
	lower := strings.ToLower(word)
	if _, ok := v.strongClass(lower); ok {
		return true
	}
	_, ok := v.weakClass(lower)
	return ok
}

// IsGroup reports whether a word is a known scene-group signature.
func (v *Vocabulary) IsGroup(word string) bool {
	return v.groups[strings.ToLower(word)]
}
