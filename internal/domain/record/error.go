package record

import (
	"errors"
)

var ErrMissingID = errors.New("record id is missing")
