package inline

import (
	"hash/fnv"
	"strings"

	"github.com/madved/inlineq/internal/protocol"
)

// fingerprintMix is the multiply-add constant combining the query hash with
// the remaining dimensions.
const fingerprintMix = 2023654985

// Fingerprint computes the dedup key for an inline query. Calls with the
// same bot, trimmed query text, offset and (when the bot declares it needs a
// location) the same location quantized to 1e-4 degrees collide; the key is
// stable within one process run only.
func Fingerprint(botID int64, query, offset string, needsLocation bool, loc *protocol.Location) uint64 {
	h := hashString(strings.TrimSpace(query))
	h = h*fingerprintMix + uint64(botID)
	h = h*fingerprintMix + hashString(offset)
	if needsLocation && loc != nil {
		h = h*fingerprintMix + uint64(int64(loc.Latitude*1e4))
		h = h*fingerprintMix + uint64(int64(loc.Longitude*1e4))
	}
	return h & 0x7FFFFFFFFFFFFFFF
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
