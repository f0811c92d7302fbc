package factcheck

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/ppiankov/newslens/internal/model"
)

// AuthorityGrader assigns authority tiers to cited URLs
type AuthorityGrader struct {
	domainMap    map[string]string
	primary      []string
	secondary    []string
	pathPatterns []compiledPattern
}

type compiledPattern struct {
	pattern *regexp.Regexp
	tier    model.AuthorityTier
}

// NewAuthorityGrader builds a grader from config. Invalid path patterns are skipped.
func NewAuthorityGrader(cfg model.AuthorityConfig) *AuthorityGrader {
	g := &AuthorityGrader{
		domainMap: cfg.DomainMap,
		primary:   lowerAll(cfg.PrimaryDomains),
		secondary: lowerAll(cfg.SecondaryDomains),
	}
	for _, p := range cfg.PathPatterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		g.pathPatterns = append(g.pathPatterns, compiledPattern{pattern: re, tier: parseTier(p.Tier)})
	}
	return g
}

// Grade classifies a URL. Unparseable URLs are tertiary.
func (g *AuthorityGrader) Grade(rawURL string) model.Source {
	src := model.Source{URL: rawURL, Authority: model.TierTertiary}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return src
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	src.Host = host

	if tier, ok := g.domainMap[host]; ok {
		src.Authority = parseTier(tier)
		return src
	}
	if matchesDomain(host, g.primary) {
		src.Authority = model.TierPrimary
		return src
	}
	if matchesDomain(host, g.secondary) {
		src.Authority = model.TierSecondary
		return src
	}
	for _, cp := range g.pathPatterns {
		if cp.pattern.MatchString(parsed.Path) {
			src.Authority = cp.tier
			return src
		}
	}

	// Government and academic TLDs
	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".edu") || strings.HasSuffix(host, ".ac.uk") {
		src.Authority = model.TierPrimary
	}
	return src
}

func matchesDomain(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func parseTier(tier string) model.AuthorityTier {
	switch strings.ToLower(tier) {
	case "primary", "1":
		return model.TierPrimary
	case "secondary", "2":
		return model.TierSecondary
	default:
		return model.TierTertiary
	}
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(s))
	}
	return out
}
