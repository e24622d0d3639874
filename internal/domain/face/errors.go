package face

import "errors"

var ErrFaceNotRecognized = errors.New("face not recognized")
