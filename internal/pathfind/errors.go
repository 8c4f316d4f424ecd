package pathfind

import "errors"

var errNilSnapshot = errors.New("pathfind: snapshot must not be nil")
