package quality

// Scoring ranks copies of the same title for reports: resolution first,
// then source, then size. Color decides collision order; the score only
// orders files that share a color.

const (
	ScoreResolution2160p = 400
	ScoreResolution1080p = 300
	ScoreResolution720p  = 200
	ScoreResolution480p  = 100

	ScoreSourceREMUX  = 100
	ScoreSourceBluRay = 80
	ScoreSourceWEBDL  = 60
	ScoreSourceWEBRip = 50
	ScoreSourceHDTV   = 40
	ScoreSourceDVD    = 20

	ScoreModernCodec = 30
	ScoreHDR         = 15

	// Size bonus per GB, capped
	MaxSizeBonusGB   = 50
	MaxSizeBonusGBTV = 10

	// Unknown resolution is weighted by size instead
	UnknownResolutionMultiplier = 20

	EmptyFilePenalty = -1000
)

// Score returns a comparable quality score for a file of the given size.
// Empty files always score EmptyFilePenalty.
func Score(info Info, size int64, isEpisode bool) int {
	if size == 0 {
		return EmptyFilePenalty
	}

	score := 0
	sizeGB := size / (1024 * 1024 * 1024)

	switch info.Tier {
	case TierUHD:
		score += ScoreResolution2160p
	case TierFHD:
		score += ScoreResolution1080p
	case TierHD:
		score += ScoreResolution720p
	case TierSD:
		score += ScoreResolution480p
	default:
		// No marker: a 5GB file gets 100 points
		score += int(sizeGB) * UnknownResolutionMultiplier
	}

	switch info.Source {
	case SourceREMUX:
		score += ScoreSourceREMUX
	case SourceBluRay:
		score += ScoreSourceBluRay
	case SourceWEBDL:
		score += ScoreSourceWEBDL
	case SourceWEBRip:
		score += ScoreSourceWEBRip
	case SourceHDTV:
		score += ScoreSourceHDTV
	case SourceDVD:
		score += ScoreSourceDVD
	}

	if info.Codec == CodecModern {
		score += ScoreModernCodec
	}
	if info.HDR != HDRNone {
		score += ScoreHDR
	}

	maxBonus := int64(MaxSizeBonusGB)
	if isEpisode {
		maxBonus = MaxSizeBonusGBTV
	}
	if sizeGB > maxBonus {
		sizeGB = maxBonus
	}
	return score + int(sizeGB)
}

// Compare orders two classifications: color, then tier, then source.
// It returns a positive number when a is better than b.
func Compare(a, b Info) int {
	if a.Color != b.Color {
		return int(a.Color) - int(b.Color)
	}
	if a.Tier != b.Tier {
		return int(a.Tier) - int(b.Tier)
	}
	return int(a.Source) - int(b.Source)
}
