package secrets

import "context"

// Kind identifies which credential pattern matched.
type Kind string

const (
	KindAPIKeyHeader Kind = "x_api_key_header"
	KindAPIKey       Kind = "api_key"
	KindBearerToken  Kind = "bearer_token"
	KindPassword     Kind = "password"
	KindSecretKey    Kind = "secret_key"
	KindAPISecret    Kind = "api_secret"
)

// Label returns the human readable name of the kind.
func (k Kind) Label() string {
	switch k {
	case KindAPIKeyHeader:
		return "X-API-Key header"
	case KindAPIKey:
		return "API Key"
	case KindBearerToken:
		return "Bearer token"
	case KindPassword:
		return "Password"
	case KindSecretKey:
		return "Secret key"
	case KindAPISecret:
		return "API secret"
	default:
		return string(k)
	}
}

// Warning reports a likely credential in a staged file.
type Warning struct {
	File string // Repository-relative path
	Kind Kind
}

// StagedLister returns the paths currently staged in a repository.
type StagedLister interface {
	StagedFiles(ctx context.Context, repoPath string) ([]string, error)
}
