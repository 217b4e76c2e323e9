package sources

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/BerylCAtieno/starstruck-agent/internal/models"
)

const redactedMedia = "[REDACTED media]"

var (
	reDataURL = regexp.MustCompile(`(?is)\bdata:(image|video|audio)/[a-z0-9+.-]+;base64,[a-z0-9+/=\r\n]+`)
	reImgTag  = regexp.MustCompile(`(?is)<img[^>]*src=["']data:(image)/[^"']+["'][^>]*>`)
)

// StripMedia removes binary content from a payload so bundle entries stay
// text-analyzable. Keys holding encoded media (suffix _b64, screenshot*) are
// dropped; inline data URLs and base64 blobs in other strings are redacted.
func StripMedia(p models.Payload) models.Payload {
	if p == nil {
		return nil
	}
	out := make(models.Payload, len(p))
	for k, v := range p {
		if isMediaKey(k) {
			continue
		}
		out[k] = redact(v)
	}
	return out
}

func isMediaKey(k string) bool {
	k = strings.ToLower(k)
	return strings.HasSuffix(k, "_b64") || strings.HasPrefix(k, "screenshot")
}

func redact(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return map[string]any(StripMedia(x))
	case models.Payload:
		return StripMedia(x)
	case []any:
		out := make([]any, len(x))
		for i, vv := range x {
			out[i] = redact(vv)
		}
		return out
	case string:
		if reDataURL.MatchString(x) || reImgTag.MatchString(x) || looksLikeBase64Blob(x) {
			return redactedMedia
		}
		return x
	case []byte:
		return redactedMedia
	default:
		return v
	}
}

func looksLikeBase64Blob(s string) bool {
	if len(s) < 512 || strings.ContainsAny(s, " \t") {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(s)
	return err == nil
}
