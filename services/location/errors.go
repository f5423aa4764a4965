package location

import "errors"

// ErrSuperseded is returned to a resolve whose result was dropped because a
// newer resolve was issued for the same session.
var ErrSuperseded = errors.New("location resolve superseded by a newer request")

var ErrEmptyCity = errors.New("city must not be empty")
