package wajid

import (
	"regexp"
	"strconv"
	"strings"
)

// Known address servers. Every canonical identifier ends in exactly one of
// these.
const (
	ServerUser      = "s.whatsapp.net"
	ServerGroup     = "g.us"
	ServerLinked    = "lid"
	ServerBroadcast = "broadcast"
)

// JID is a canonical protocol address: a local part plus one of the four
// known servers, serialized as "user@server".
type JID struct {
	User   string
	Server string
}

func (j JID) String() string {
	return j.User + "@" + j.Server
}

func (j JID) IsGroup() bool {
	return j.Server == ServerGroup
}

func (j JID) IsBroadcast() bool {
	return j.Server == ServerBroadcast
}

// Parse splits an already-canonical identifier at its last "@". It does not
// normalize; use Canonicalize for arbitrary input.
func Parse(s string) JID {
	if i := strings.LastIndex(s, "@"); i >= 0 {
		return JID{User: s[:i], Server: s[i+1:]}
	}
	return JID{User: s, Server: ServerUser}
}

var (
	deviceOrdinalRe = regexp.MustCompile(`:\d+$`)
	strippedCharsRe = regexp.MustCompile(`[\s+()]`)
	nonLocalCharsRe = regexp.MustCompile(`[^0-9-]`)
	brazilMobileRe  = regexp.MustCompile(`^(\d{2})(\d{2})(\d)(\d{8})$`)
)

var knownServers = []string{ServerUser, ServerGroup, ServerLinked, ServerBroadcast}

// Canonicalize converts a raw address string (bare digits, human-formatted
// phone number, or already-canonical identifier) into a canonical JID. It is
// total: malformed input degrades to a JID with an empty or partial local
// part, which callers must treat as a soft validation concern. It is
// idempotent on canonical input.
func Canonicalize(raw string) JID {
	s := deviceOrdinalRe.ReplaceAllString(raw, "")

	for _, server := range knownServers {
		if strings.HasSuffix(s, "@"+server) {
			return Parse(s)
		}
	}

	s = strippedCharsRe.ReplaceAllString(s, "")
	if i := strings.IndexAny(s, ":@"); i >= 0 {
		s = s[:i]
	}
	local := nonLocalCharsRe.ReplaceAllString(s, "")
	digits := strings.ReplaceAll(local, "-", "")

	if isGroupLocal(local, digits) {
		return JID{User: local, Server: ServerGroup}
	}

	return JID{User: normalizeRegional(digits), Server: ServerUser}
}

// Legacy group ids keep an internal hyphen; newer ones are long bare digit
// runs.
func isGroupLocal(local, digits string) bool {
	if h := strings.Index(local, "-"); h > 0 && h < len(local)-1 && len(local) >= 24 {
		return true
	}
	return len(digits) >= 18
}

// normalizeRegional applies the historical mobile-prefix rules for Mexico,
// Argentina and Brazil. The rules are preserved literally for compatibility;
// no further regional cases are inferred.
func normalizeRegional(n string) string {
	switch {
	case strings.HasPrefix(n, "52"), strings.HasPrefix(n, "54"):
		// MX/AR 13-digit numbers carry a mobile-prefix digit at index 2.
		if len(n) == 13 {
			return n[:2] + n[3:]
		}
	case strings.HasPrefix(n, "55"):
		m := brazilMobileRe.FindStringSubmatch(n)
		if m == nil {
			break
		}
		area, _ := strconv.Atoi(m[2])
		// The extra ninth digit is required for low area codes and for
		// subscriber numbers starting below 7.
		if m[4][0] < '7' || area < 31 {
			break
		}
		return m[1] + m[2] + m[4]
	}
	return n
}
