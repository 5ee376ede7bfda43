package quality

// Metadata is the flattened, string-valued quality of one file, as written
// to quality reports.
type Metadata struct {
	Resolution string // "2160p", "1080p", ... or "unknown"
	Tier       string
	Source     string
	Codec      string // codec token as written, or "unknown"
	Color      string
	Score      int
}

// Flatten converts an Info into Metadata.
func Flatten(info Info, size int64, isEpisode bool) Metadata {
	md := Metadata{
		Resolution: info.Resolution(),
		Tier:       info.Tier.String(),
		Source:     info.Source.String(),
		Codec:      info.CodecName,
		Color:      info.Color.String(),
		Score:      Score(info, size, isEpisode),
	}
	if md.Resolution == "" {
		md.Resolution = "unknown"
	}
	if md.Codec == "" {
		md.Codec = "unknown"
	}
	return md
}
