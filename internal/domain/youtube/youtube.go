package youtube

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/forPelevin/ytone/internal/types"
)

var videoIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

var knownHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
	"www.youtu.be":      true,
}

// Parse validates raw as a YouTube video link and extracts the 11-character
// video id. Recognized shapes: watch?v=, youtu.be/, shorts/, embed/, live/
// and the legacy /v/ path. The scheme may be omitted.
func Parse(raw string) (types.VideoReference, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return types.VideoReference{}, &types.InvalidURLError{URL: raw}
	}

	u, err := url.Parse(withScheme(s))
	if err != nil {
		return types.VideoReference{}, &types.InvalidURLError{URL: raw}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return types.VideoReference{}, &types.InvalidURLError{URL: raw}
	}
	host := strings.ToLower(u.Hostname())
	if !knownHosts[host] {
		return types.VideoReference{}, &types.InvalidURLError{URL: raw}
	}

	id := extractID(host, u)
	if !videoIDRE.MatchString(id) {
		return types.VideoReference{}, &types.InvalidURLError{URL: raw}
	}
	return types.VideoReference{ID: id, URL: s}, nil
}

func withScheme(s string) string {
	if strings.Contains(s, "://") {
		return s
	}
	return "https://" + s
}

func extractID(host string, u *url.URL) string {
	segs := pathSegments(u)
	if host == "youtu.be" || host == "www.youtu.be" {
		if len(segs) == 0 {
			return ""
		}
		return segs[0]
	}

	if len(segs) == 0 {
		return ""
	}
	switch segs[0] {
	case "watch":
		return u.Query().Get("v")
	case "shorts", "embed", "live", "v":
		if len(segs) < 2 {
			return ""
		}
		return segs[1]
	}
	return ""
}

func pathSegments(u *url.URL) []string {
	var out []string
	for _, s := range strings.Split(u.EscapedPath(), "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
