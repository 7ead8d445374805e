package client

import "strings"

// Capability decides whether a given browser identity should take the
// server-rendered fallback path. Implementations are hints, not guarantees;
// inject a fixed-answer implementation in tests.
type Capability interface {
	UseFallback(userAgent string) bool
}

// CapabilityFunc adapts a function to the Capability interface.
type CapabilityFunc func(userAgent string) bool

func (f CapabilityFunc) UseFallback(userAgent string) bool {
	return f(userAgent)
}

// UserAgentCapability classifies browsers by their identifying string. It is
// positive for the WebKit/Safari engine family, whose native canvas capture
// produces lower-fidelity output, and negative for the multi-engine browsers
// whose identifying strings share the WebKit substrings.
type UserAgentCapability struct{}

// knownMultiEngine are identifying substrings of browsers that embed
// "AppleWebKit"/"Safari" in their user agent but are not Safari.
var knownMultiEngine = []string{"chrome", "chromium", "crios", "edg", "opr", "android"}

func (UserAgentCapability) UseFallback(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	if !strings.Contains(ua, "applewebkit") || !strings.Contains(ua, "safari") {
		return false
	}
	for _, marker := range knownMultiEngine {
		if strings.Contains(ua, marker) {
			return false
		}
	}
	return true
}
