package morph

import (
	"errors"
	"fmt"
)

var (
	ErrUninitialized         = errors.New("reloadable value used before first reload")
	ErrUnsupportedDictionary = errors.New("unsupported dictionary type")
)

// Stage names the analysis step an error came from.
type Stage string

const (
	StageExtraction Stage = "extraction"
	StageCache      Stage = "cache"
	StageTokenizer  Stage = "tokenizer"
	StageDictionary Stage = "dictionary"
)

// StageError labels an error with the stage that failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Err.Error())
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Wrap labels err with stage. It returns nil for a nil err and keeps an
// existing label.
func Wrap(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage label of err, if any.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
