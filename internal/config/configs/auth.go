package configs

// Auth holds configuration for verifying bearer tokens issued by the
// identity provider.
type Auth struct {
	// Secret is the shared HS256 signing key.
	Secret string `env:"SECRET,required"`
}
