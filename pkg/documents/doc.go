// Package documents holds the Appwrite side of a bulk run: validators that
// turn a raw JSON item list into typed work items, and a REST client whose
// methods are the per-item operations handed to batch.Run.
//
// Remote failures are returned as *retry.RemoteError carrying the backend's
// code and type plus the HTTP status, which is what the retry policy
// classifies on.
package documents
