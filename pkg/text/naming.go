package text

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ImageExt is the only file extension that is migrated.
const ImageExt = ".jpeg"

// ErrInvalidFormat is returned for image names without a '-' separator
var ErrInvalidFormat = errors.Base("invalid image name format")

// IsImage reports whether name is a migratable image. The check is case-sensitive.
func IsImage(name string) bool {
	return strings.HasSuffix(name, ImageExt)
}

// RenameAsset derives the destination filename for an image.
// The name is split on its first '-'; the lot and die-group are inserted between
// the prefix and the unchanged remainder:
//
//	A1-B2-C3.jpeg + LOT7 + G1 => A1-LOT7-G1-B2-C3.jpeg
func RenameAsset(name, lotID, dieGroup string) (string, error) {
	prefix, remainder, ok := strings.Cut(name, "-")
	if !ok {
		return "", errors.Errorf("%w: %q has no '-'", ErrInvalidFormat, name)
	}
	return prefix + "-" + lotID + "-" + dieGroup + "-" + remainder, nil
}
