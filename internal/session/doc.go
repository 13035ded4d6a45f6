// Package session provides TTL-keyed storage for conversation state.
//
// # Overview
//
// Two concerns live here, on distinct key spaces that never cross-reference:
//
//   - ThreadSessions maps a conversation id to the agent-assigned thread id
//     under "session:<conversation_id>" keys (default TTL 15 minutes).
//   - ProfileCache maps a user directory id to cached identity attributes
//     under "profile:<user_id>" keys (default TTL 24 hours).
//
// Both sit on the Store interface. Save always overwrites; there are no
// update merges. Expired entries behave exactly like absent ones.
//
// # Backends
//
// MemoryStore keeps entries in a map with a background cleanup goroutine.
// SQLiteStore persists entries in a single kv table so sessions survive
// restarts; use ":memory:" for tests.
package session
