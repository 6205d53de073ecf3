package subtitle

import "errors"

var (
	ErrUnreachable = errors.New("subtitle url is unreachable")
	ErrNoCues      = errors.New("subtitle has no cues")
)
