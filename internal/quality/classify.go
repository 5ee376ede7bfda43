package quality

import "github.com/Nomadcxx/jellytidy/internal/naming"

// Classify derives quality from the known-junk tokens of a parsed stem.
// Non-junk tokens are ignored.
func Classify(tokens []naming.Token) Info {
	var info Info
	var strayCodecs []string

	for _, t := range tokens {
		if t.Kind != naming.TokenJunk {
			continue
		}
		lower := t.Lower()

		switch t.Class {
		case naming.JunkResolution:
			if h, ok := parseHeight(lower); ok && h > info.Height {
				info.Height = h
			}
		case naming.JunkCodec:
			if codecNeutral[lower] {
				continue
			}
			class, ok := codecClasses[lower]
			if !ok {
				strayCodecs = append(strayCodecs, t.Text)
				continue
			}
			if class > info.Codec {
				info.Codec = class
				info.CodecName = t.Text
			}
		case naming.JunkSource:
			if s, ok := sourceClasses[lower]; ok && s > info.Source {
				info.Source = s
			}
		case naming.JunkHDR:
			if h, ok := hdrFormats[lower]; ok && h > info.HDR {
				info.HDR = h
			}
		case naming.JunkEdition:
			if label, ok := editionLabels[lower]; ok && info.Edition == "" {
				info.Edition = label
			}
		case naming.JunkRelease:
			if lower == "proper" || lower == "repack" || lower == "rerip" {
				info.Proper = true
			}
		}
	}

	info.Tier = TierForHeight(info.Height)
	info.Color = ColorFor(info.Tier, info.Codec)

	if info.Tier == TierUnknown {
		info.Unknown = append(info.Unknown, "resolution")
	}
	if info.Codec == CodecUnknown {
		info.Unknown = append(info.Unknown, "codec")
	}
	info.Unknown = append(info.Unknown, strayCodecs...)
	return info
}

// ClassifyName tokenizes a filename stem and classifies it.
func ClassifyName(stem string) Info {
	return Classify(naming.Tokenize(stem).Tokens)
}
