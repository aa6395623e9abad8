package secrets

const DefaultExtension = ".bru"

type Config struct {
	// Extension restricts scanning to request-definition files.
	Extension string
}
