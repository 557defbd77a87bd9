// Package render implements the content rendering pipeline: resolving
// image upload placeholders, converting post markup to HTML, and
// estimating read time.
//
// The anchor grammar below is persisted inside stored post content and
// must stay bit-exact across releases.
package render

// DefaultAltText is substituted for an empty alt text when an image is
// rendered. Anchors keep the alt text exactly as the author wrote it.
const DefaultAltText = "post image"

// imageScheme prefixes the id inside an image anchor target. The id after
// the scheme is either a client-generated temporary id or a permanent
// asset id.
const imageScheme = "image:"

const (
	colorOpenPrefix = "{color:"
	colorClose      = "{/color}"
)

// ImageAnchor builds the literal image placeholder for an id:
//
//	![altText](image:id)
func ImageAnchor(altText, id string) string {
	return "![" + altText + "](" + imageScheme + id + ")"
}
