package ingest

import "fmt"

// Stage identifies where in the pipeline a run is, or where it failed.
type Stage string

const (
	StageResolve     Stage = "metadata"
	StageAcquire     Stage = "download"
	StageUploadAudio Stage = "audio upload"
	StageUploadArt   Stage = "art upload"
	StageRegister    Stage = "registration"
)

// StageError wraps a failure with the pipeline stage it happened in. Every
// error leaving Run is a StageError; nothing escapes a stage boundary raw.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
