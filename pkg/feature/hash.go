package feature

// Bucket maps a flag key and identifier to a stable integer in [0, 100).
//
// The algorithm is the legacy 32-bit rolling hash used by the original
// rollout system: h = (h << 5) - h + c over each character code with
// two's-complement wraparound, final bucket abs(h) mod 100. It is kept
// bit-for-bit so existing deployments keep their bucket assignments; it is
// deterministic and fast but its distribution has never been validated.
// Do not swap it for a stronger hash without migrating stored rollouts.
func Bucket(flagKey, identifier string) int {
	var h int32
	for _, c := range flagKey + identifier {
		h = h<<5 - h + int32(c)
	}
	// Widen before negating: abs would overflow int32 at MinInt32.
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return int(v % 100)
}
