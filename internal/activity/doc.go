// Package activity models inbound channel events and the per-turn context
// derived from them.
//
// The Builder turns a raw Activity into a Context record, probing a
// prioritized list of candidate field names for contact data (channels are
// inconsistent about where they put email and phone numbers), and can later
// fill still-empty fields from a cached directory profile. Channel-supplied
// identity always wins over cached profile data.
package activity
