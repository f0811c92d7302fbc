package model

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Official bodies, statutes, academic papers
	TierSecondary AuthorityTier = 2 // Wire services, encyclopedias, established newsrooms
	TierTertiary  AuthorityTier = 3 // Blogs, social media, unknown sites
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// Source is a URL referenced inside an analyzed text
type Source struct {
	URL       string        `json:"url"`
	Host      string        `json:"host,omitempty"`
	Authority AuthorityTier `json:"authority"`
}
