// Package webhook is the HTTP boundary of the gateway. It accepts channel
// activities on POST /api/messages, optionally verifies an HS256 bearer
// token, and dispatches each activity to the turn coordinator with a
// responder bound to the activity's service URL.
//
// A failed turn never surfaces to the channel as an HTTP error: the server
// logs the failure with conversation and user identifiers and makes a best
// effort to deliver a generic apology instead.
package webhook
