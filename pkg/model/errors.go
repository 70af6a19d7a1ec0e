package model

import "errors"

var ErrInvalidModel = errors.New("invalid model")
