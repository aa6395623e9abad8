package secrets

import "regexp"

type pattern struct {
	kind Kind
	re   *regexp.Regexp
}

// patterns are evaluated in order; the order defines the order of warnings for
// a single file.
var patterns = []pattern{
	{kind: KindAPIKeyHeader, re: regexp.MustCompile(`(?i)x-api-key:\s*[a-z0-9_-]{10,}`)},
	{kind: KindAPIKey, re: regexp.MustCompile(`(?i)apikey:\s*[a-z0-9_-]{10,}`)},
	{kind: KindBearerToken, re: regexp.MustCompile(`(?i)authorization:\s*bearer\s+[a-z0-9_-]{10,}`)},
	{kind: KindPassword, re: regexp.MustCompile(`(?i)password:\s*\S{5,}`)},
	{kind: KindSecretKey, re: regexp.MustCompile(`(?i)secret[_-]?key:\s*[a-z0-9_-]{10,}`)},
	{kind: KindAPISecret, re: regexp.MustCompile(`(?i)api[_-]?secret:\s*[a-z0-9_-]{10,}`)},
}
