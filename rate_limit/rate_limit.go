package rate_limit

// RateLimit defines token per minute (TPM) and request per minute (RPM) limits
type RateLimit struct {
	RPM int // Requests per minute
	TPM int // Tokens per minute
}

// OpenAIRateLimit defines the default rate limits for OpenAI API
var OpenAIRateLimit = RateLimit{
	RPM: 10 * 1000,           // 10K RPM
	TPM: 10 * 1_000_000 * .9, // 10M TPM with 10% buffer to stay under the limit
}
