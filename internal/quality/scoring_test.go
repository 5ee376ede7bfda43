package quality

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const gb = int64(1024 * 1024 * 1024)

func TestScore_EmptyFile(t *testing.T) {
	info := Info{Tier: TierFHD, Source: SourceBluRay}
	assert.Equal(t, EmptyFilePenalty, Score(info, 0, false))
}

func TestScore_ResolutionDominance(t *testing.T) {
	// 1080p at 2GB beats 720p at 10GB
	fhd := Score(Info{Tier: TierFHD, Source: SourceWEBDL}, 2*gb, false)
	hd := Score(Info{Tier: TierHD, Source: SourceWEBDL}, 10*gb, false)
	assert.Greater(t, fhd, hd)
}

func TestScore_SourceOrder(t *testing.T) {
	order := []Source{SourceREMUX, SourceBluRay, SourceWEBDL, SourceWEBRip, SourceHDTV, SourceDVD}
	prev := 1 << 30
	for _, s := range order {
		got := Score(Info{Tier: TierFHD, Source: s}, 5*gb, false)
		assert.Less(t, got, prev, "source %v", s)
		prev = got
	}
}

func TestScore_SizeCap(t *testing.T) {
	info := Info{Tier: TierFHD, Source: SourceBluRay}

	atCap := Score(info, MaxSizeBonusGB*gb, false)
	over := Score(info, 200*gb, false)
	assert.Equal(t, atCap, over)

	epCap := Score(info, MaxSizeBonusGBTV*gb, true)
	epOver := Score(info, 40*gb, true)
	assert.Equal(t, epCap, epOver)
	assert.Less(t, epOver, over)
}

func TestScore_UnknownResolutionUsesSize(t *testing.T) {
	small := Score(Info{}, 1*gb, false)
	large := Score(Info{}, 8*gb, false)
	assert.Equal(t, 1*UnknownResolutionMultiplier+1, small)
	assert.Equal(t, 8*UnknownResolutionMultiplier+8, large)
}

func TestScore_ModernCodecAndHDR(t *testing.T) {
	base := Score(Info{Tier: TierUHD}, gb, false)
	modern := Score(Info{Tier: TierUHD, Codec: CodecModern}, gb, false)
	hdr := Score(Info{Tier: TierUHD, Codec: CodecModern, HDR: DolbyVision}, gb, false)
	assert.Equal(t, base+ScoreModernCodec, modern)
	assert.Equal(t, modern+ScoreHDR, hdr)
}

func TestCompare(t *testing.T) {
	green := ClassifyName("Movie.2019.1080p.BluRay.x265")
	yellow := ClassifyName("Movie.2019.1080p.BluRay.x264")
	blue := ClassifyName("Movie.2019.2160p.WEBRip.x264")
	red := ClassifyName("Movie.2019.720p.BluRay.x264")

	assert.Positive(t, Compare(blue, green))
	assert.Positive(t, Compare(green, yellow))
	assert.Positive(t, Compare(yellow, red))
	assert.Zero(t, Compare(green, green))

	// same color, tier decides
	sd := ClassifyName("Movie.2019.480p.x265")
	hd := ClassifyName("Movie.2019.720p.x265")
	assert.Equal(t, ColorYellow, sd.Color)
	assert.Equal(t, ColorYellow, hd.Color)
	assert.Positive(t, Compare(hd, sd))

	// same color and tier, source decides
	remux := ClassifyName("Movie.2019.1080p.REMUX.x264")
	web := ClassifyName("Movie.2019.1080p.WEB-DL.x264")
	assert.Positive(t, Compare(remux, web))
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		resolution string
		tier       string
		source     string
		codec      string
		color      string
	}{
		{
			name:       "full markers",
			path:       "/media/Inception.2010.1080p.BluRay.x265-RARBG.mkv",
			resolution: "1080p",
			tier:       "FHD",
			source:     "BluRay",
			codec:      "x265",
			color:      "GREEN",
		},
		{
			name:       "uhd web",
			path:       "/media/Dune.2021.2160p.WEB-DL.DDP5.1.HEVC.mkv",
			resolution: "2160p",
			tier:       "UHD",
			source:     "WEB-DL",
			codec:      "HEVC",
			color:      "BLUE",
		},
		{
			name:       "no markers",
			path:       "/media/Home Movie.avi",
			resolution: "unknown",
			tier:       "unknown",
			source:     "unknown",
			codec:      "unknown",
			color:      "RED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := filepath.Base(tt.path)
			md := Flatten(ClassifyName(strings.TrimSuffix(base, filepath.Ext(base))), 4*gb, false)
			assert.Equal(t, tt.resolution, md.Resolution)
			assert.Equal(t, tt.tier, md.Tier)
			assert.Equal(t, tt.source, md.Source)
			assert.Equal(t, tt.codec, md.Codec)
			assert.Equal(t, tt.color, md.Color)
		})
	}
}

func TestTierForHeight(t *testing.T) {
	assert.Equal(t, TierUnknown, TierForHeight(0))
	assert.Equal(t, TierSD, TierForHeight(719))
	assert.Equal(t, TierHD, TierForHeight(720))
	assert.Equal(t, TierHD, TierForHeight(1079))
	assert.Equal(t, TierFHD, TierForHeight(1080))
	assert.Equal(t, TierFHD, TierForHeight(2159))
	assert.Equal(t, TierUHD, TierForHeight(2160))
}
