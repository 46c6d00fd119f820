package link

import "errors"

var ErrInvalidEncoding = errors.New("username is not valid UTF-8")
