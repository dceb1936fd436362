package core

import (
	"errors"
)

var (
	ErrInitFailed         = errors.New("initialization failed")
	ErrUnsupportedContext = errors.New("graphics context does not meet the required version")
	ErrResourceCreation   = errors.New("gpu resource creation failed")
	ErrConstantUpload     = errors.New("constant buffer upload failed")
	ErrPassOrder          = errors.New("render pass reads a resource before it is written")
	ErrAssetRead          = errors.New("asset could not be read")
	ErrUnknownObject      = errors.New("unknown scene object")
)
