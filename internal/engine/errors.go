package engine

import "errors"

// Error taxonomy for the synchronization engine. Transport-level failures are
// absorbed into the fallback attempt; only the failure of the last available
// path for an operation becomes caller-visible.
var (
	// ErrTransportUnavailable is internal: it triggers the fallback send and
	// is never surfaced to the end user.
	ErrTransportUnavailable = errors.New("transport unavailable")

	// ErrSendFailed means both the transport and the fallback path failed
	// (or the fallback alone, when the transport is disabled). Recoverable;
	// the draft is not retried automatically.
	ErrSendFailed = errors.New("send failed")

	// ErrUploadFailed aborts a file send before any message is created.
	ErrUploadFailed = errors.New("file upload failed")

	// ErrFetchFailed is a history-page loading failure. Already-merged
	// timeline state is unaffected and the fetch is safe to retry.
	ErrFetchFailed = errors.New("history fetch failed")

	// ErrDownloadFailed is a transient signed-URL failure.
	ErrDownloadFailed = errors.New("file download failed")

	// ErrForbiddenCardType rejects an info-card draft from a role that may
	// not author it, before any delivery attempt.
	ErrForbiddenCardType = errors.New("role not permitted to author this message type")

	// ErrEmptyDraft rejects a text draft with no content.
	ErrEmptyDraft = errors.New("message content is required")
)
