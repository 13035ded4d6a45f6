// Package rules holds the ordered transforms applied to the outgoing user
// message before it reaches the orchestrator: labeling the raw input,
// prepending an identity arguments block, and appending a locale-keyed
// response-language instruction. Every rule checks for its own marker first,
// so applying the chain to its own output changes nothing.
package rules
