// Package iam exchanges API keys for bearer tokens and caches them per
// process. The orchestrator client and the generation client each own a
// TokenSource against the same IAM endpoint with their respective keys.
package iam
