package errors

import (
	"errors"
	"fmt"
)

// Kind is the category of a build failure
type Kind string

const (
	// KindConfigurationReference indicates an unresolved primary body reference
	KindConfigurationReference Kind = "configuration_reference"
	// KindAssetLoad indicates a missing bundle or asset
	KindAssetLoad Kind = "asset_load"
	// KindStageConstruction indicates a construction stage failed
	KindStageConstruction Kind = "stage_construction"
	// KindGeometryDegenerate indicates zero-size mesh bounds
	KindGeometryDegenerate Kind = "geometry_degenerate"
	// KindInternal is everything else
	KindInternal Kind = "internal"
)

// BuildError is the error type shared by the scheduler, the builder and its stages
type BuildError struct {
	Kind    Kind
	Body    string
	Stage   string
	Message string
	Err     error
}

func (e *BuildError) Error() string {
	prefix := string(e.Kind)
	if e.Body != "" {
		prefix += " [" + e.Body + "]"
	}
	if e.Stage != "" {
		prefix += " stage " + e.Stage
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// ConfigurationReferencef creates an unresolved-reference error
func ConfigurationReferencef(body, format string, args ...interface{}) error {
	return &BuildError{
		Kind:    KindConfigurationReference,
		Body:    body,
		Message: fmt.Sprintf(format, args...),
	}
}

// AssetLoad creates an asset error for the given bundle and path
func AssetLoad(bundle, path string, err error) error {
	return &BuildError{
		Kind:    KindAssetLoad,
		Message: fmt.Sprintf("couldn't load asset %s from bundle %s", path, bundle),
		Err:     err,
	}
}

// WrapStage wraps a stage failure. Errors that already carry a kind keep it.
func WrapStage(body, stage string, err error) error {
	var be *BuildError
	if errors.As(err, &be) && be.Body == "" && be.Stage == "" {
		return &BuildError{
			Kind:    be.Kind,
			Body:    body,
			Stage:   stage,
			Message: be.Message,
			Err:     be.Err,
		}
	}
	return &BuildError{
		Kind:    KindStageConstruction,
		Body:    body,
		Stage:   stage,
		Message: "stage failed",
		Err:     err,
	}
}

// StageConstructionf creates a stage error with formatting
func StageConstructionf(body, stage, format string, args ...interface{}) error {
	return &BuildError{
		Kind:    KindStageConstruction,
		Body:    body,
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
	}
}

// GeometryDegeneratef creates a degenerate geometry error
func GeometryDegeneratef(format string, args ...interface{}) error {
	return &BuildError{
		Kind:    KindGeometryDegenerate,
		Message: fmt.Sprintf(format, args...),
	}
}

// KindOf returns the kind of an error, KindInternal for foreign errors
func KindOf(err error) Kind {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}

func IsAssetLoad(err error) bool {
	return err != nil && KindOf(err) == KindAssetLoad
}

func IsGeometryDegenerate(err error) bool {
	return err != nil && KindOf(err) == KindGeometryDegenerate
}
