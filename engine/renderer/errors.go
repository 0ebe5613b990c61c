package renderer

import "errors"

var (
	// ErrPipelineNotFound is returned when a draw names a pipeline that was never registered.
	ErrPipelineNotFound = errors.New("render pipeline not found")

	// ErrFrameInProgress is returned by BeginFrame when the previous frame was not ended.
	ErrFrameInProgress = errors.New("frame already in progress")

	// ErrFrameNotStarted is returned by draws and EndFrame outside BeginFrame/EndFrame.
	ErrFrameNotStarted = errors.New("frame not started")

	// ErrTooManyTextures is returned when uploading more textures than the configured limit.
	ErrTooManyTextures = errors.New("too many textures")

	// ErrUnknownResource is returned for buffer, descriptor set or texture IDs the backend does not own.
	ErrUnknownResource = errors.New("unknown resource")
)
