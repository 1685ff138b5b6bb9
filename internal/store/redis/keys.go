package redis

const (
	// KeyPrefixResults is the prefix for per-application result history lists
	KeyPrefixResults = "ceacwatch:results:"
	// KeyChecksTotal counts completed checks across all applications
	KeyChecksTotal = "ceacwatch:usage:checks"
)

// ResultsKey returns the Redis key for an application's result history.
func ResultsKey(applicationID string) string {
	return KeyPrefixResults + applicationID
}
