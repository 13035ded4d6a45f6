// Package orchestrate talks to the hosted conversational-agent service.
//
// One Complete call is one non-streaming chat request. Thread continuity is
// handled here: an existing thread id for the conversation is attached as
// the X-IBM-THREAD-ID header, and any thread id the response carries is
// persisted for the next turn. Network and HTTP failures never crash a turn;
// they degrade to "no reply".
package orchestrate
