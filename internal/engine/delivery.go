package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"kelasku/server/internal/models"
)

// liveSender is the slice of Transport the coordinator needs.
type liveSender interface {
	Send(draft models.Draft) bool
}

// fallbackAPI is the slice of APIClient the coordinator needs.
type fallbackAPI interface {
	Send(ctx context.Context, draft models.Draft) (*models.Message, error)
	Upload(ctx context.Context, name, mimeType string, size int64, r io.Reader, onProgress func(int)) (*FileInfo, error)
}

// DeliveryCoordinator is the send path: transport first, durable fallback
// second. File attachments go through a separate upload step before a FILE
// message is emitted.
type DeliveryCoordinator struct {
	transport liveSender
	api       fallbackAPI
	store     *TimelineStore
	viewer    Viewer
	onMerged  func(MergeResult)
}

// NewDeliveryCoordinator wires the send path for one viewer.
func NewDeliveryCoordinator(transport liveSender, api fallbackAPI, store *TimelineStore, viewer Viewer) *DeliveryCoordinator {
	return &DeliveryCoordinator{transport: transport, api: api, store: store, viewer: viewer}
}

// OnMerged registers an observer for merges the coordinator itself performs,
// i.e. fallback-delivered sends. Transport-path messages reach the store
// through the live event stream instead.
func (d *DeliveryCoordinator) OnMerged(fn func(MergeResult)) {
	d.onMerged = fn
}

// SendText delivers a text or info-card draft. Info-card types are rejected
// before any delivery attempt unless the viewer's role may author them.
func (d *DeliveryCoordinator) SendText(ctx context.Context, content string, msgType models.MessageType, metadata map[string]any, targetStudentID *string) error {
	if msgType == "" {
		msgType = models.TypeText
	}
	if msgType == models.TypeText && content == "" {
		return ErrEmptyDraft
	}
	if msgType.IsInfoCard() && !models.CanAuthorInfoCards(d.viewer.Role) {
		return ErrForbiddenCardType
	}

	draft := models.Draft{
		ClientID:        uuid.New().String(),
		Content:         content,
		Type:            msgType,
		Metadata:        metadata,
		TargetStudentID: targetStudentID,
	}

	return d.deliver(ctx, draft)
}

// SendFile uploads the attachment, then delivers a FILE message referencing
// it. Upload failure aborts the whole send: no message is created and the
// failure is reported to the caller, never swallowed.
func (d *DeliveryCoordinator) SendFile(ctx context.Context, name, mimeType string, size int64, r io.Reader, onProgress func(int)) error {
	info, err := d.api.Upload(ctx, name, mimeType, size, r, onProgress)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	draft := models.Draft{
		ClientID:     uuid.New().String(),
		Content:      info.FileName,
		Type:         models.TypeFile,
		FileID:       &info.FileID,
		FileName:     &info.FileName,
		FileMimeType: &info.FileMimeType,
		FileSize:     &info.FileSize,
	}

	return d.deliver(ctx, draft)
}

// deliver attempts the transport, then falls back to the durable REST send
// with the identical draft. A transport acceptance leaves an optimistic
// pending copy that the live echo resolves by clientId; a fallback success
// merges the authoritative response directly. Either way exactly one visible
// copy results.
func (d *DeliveryCoordinator) deliver(ctx context.Context, draft models.Draft) error {
	// The pending copy goes in before the write: the echo, however fast,
	// must always find an entry to resolve.
	d.store.AppendPending(draft, d.viewer)

	if d.transport.Send(draft) {
		return nil
	}
	d.store.DropPending(draft.ClientID)

	msg, err := d.api.Send(ctx, draft)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	res := d.store.Merge([]models.Message{*msg}, OriginLive)
	if d.onMerged != nil {
		d.onMerged(res)
	}
	return nil
}
