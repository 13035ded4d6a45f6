// Package profile resolves caller identity attributes from an external user
// directory, with a TTL cache in front so each user is looked up at most
// once per freshness window.
package profile
