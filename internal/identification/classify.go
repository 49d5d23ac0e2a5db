package identification

import (
	"errors"

	"oceaneye/internal/catalog"
	"oceaneye/internal/digest"
	"oceaneye/internal/imaging"
)

// Classify maps an error from hashing or resolving to its outcome. Errors
// that do not identify themselves are treated as transport failures since
// the collection could not be obtained.
func Classify(err error) Outcome {
	var encodingErr *digest.EncodingError
	switch {
	case err == nil:
		return OutcomeNotFound
	case errors.As(err, &encodingErr), errors.Is(err, imaging.ErrUnsupportedImage):
		return OutcomeEncodingError
	case catalog.IsDecode(err):
		return OutcomeDecodeError
	default:
		return OutcomeTransportError
	}
}
