package translate

import (
	"context"
	"regexp"
)

// ImageInfo describes one editable image: the attributes the drawer exposes
// and a PNG snapshot of the editor canvas.
type ImageInfo struct {
	Position int
	Src      string
	Alt      string
	Title    string
	DataText string // concatenated data-* attribute values
	Width    int
	Height   int
	PNG      []byte // editor canvas snapshot, may be nil
}

// hanRe matches simplified/traditional Chinese glyphs.
var hanRe = regexp.MustCompile(`[\x{4e00}-\x{9fff}]+`)

// ContainsChinese reports whether text carries CJK unified ideographs.
func ContainsChinese(text string) bool {
	return hanRe.MatchString(text)
}

// AttributesHaveChinese is the fast detection path: alt/title/data-*
// attributes and the src path are checked for CJK code points before any
// OCR is spent.
func AttributesHaveChinese(img ImageInfo) bool {
	return ContainsChinese(img.Alt) ||
		ContainsChinese(img.Title) ||
		ContainsChinese(img.DataText) ||
		ContainsChinese(img.Src)
}

// TooSmall reports images below the OCR floor; they are treated as having
// no Chinese.
func TooSmall(img ImageInfo) bool {
	return (img.Width > 0 && img.Width < 50) || (img.Height > 0 && img.Height < 50)
}

// Detector decides whether an image contains Chinese text.
type Detector interface {
	HasChinese(ctx context.Context, img ImageInfo) (bool, error)
}

// AttributeDetector is the OCR-free detector used as a fallback when OCR is
// unavailable or failing.
type AttributeDetector struct{}

// HasChinese implements Detector on attributes alone.
func (AttributeDetector) HasChinese(_ context.Context, img ImageInfo) (bool, error) {
	if TooSmall(img) {
		return false, nil
	}
	return AttributesHaveChinese(img), nil
}
