package render

import (
	"regexp"
	"strings"

	"contentapi/internal/model"
)

// UploadDescriptor reports one completed image upload, in upload order.
// TemporaryID is the client-generated token the author embedded in the
// content before the upload finished; AssetID and URL come from object
// storage once the binary is stored.
type UploadDescriptor struct {
	TemporaryID string `json:"temporary_id"`
	AssetID     string `json:"asset_id"`
	URL         string `json:"url"`
	AltText     string `json:"alt_text"`
}

// anchorShapeRe matches any image-anchor-shaped substring, whatever its
// alt text or target. Only used for positional fallback; the exact-match
// path works on literal strings so no escaping is involved.
var anchorShapeRe = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)

// Resolve rewrites temporary upload anchors in rawContent into permanent
// asset anchors and returns the resolved content together with one
// PostImage per descriptor, in upload order.
//
// Each descriptor first tries an exact literal replacement of its
// temporary anchor. When the author edited the alt text after inserting
// the placeholder the exact match misses; the descriptor then falls back
// to claiming the anchor-shaped substring at its ordinal among the
// descriptors that missed, regardless of alt text. That ordering is a
// heuristic: with several same-alt images whose upload order differs from
// their appearance order it can pick the wrong anchor, and it is kept
// as-is for compatibility with already-persisted content.
//
// A descriptor that matches neither way yields an image with an empty
// Anchor and a warning log; resolution never fails.
func Resolve(rawContent string, uploads []UploadDescriptor) (string, []model.PostImage) {
	resolved := rawContent
	images := make([]model.PostImage, 0, len(uploads))

	fallback := 0
	for pos, up := range uploads {
		temp := ImageAnchor(up.AltText, up.TemporaryID)
		perm := ImageAnchor(up.AltText, up.AssetID)

		img := model.PostImage{
			AssetID:  up.AssetID,
			URL:      up.URL,
			AltText:  altOrDefault(up.AltText),
			Position: pos,
		}

		switch {
		case strings.Contains(resolved, temp):
			resolved = strings.ReplaceAll(resolved, temp, perm)
			img.Anchor = perm

		default:
			matches := anchorShapeRe.FindAllStringIndex(resolved, -1)
			if fallback < len(matches) {
				m := matches[fallback]
				resolved = resolved[:m[0]] + perm + resolved[m[1]:]
				img.Anchor = perm
			} else {
				logWarn("image anchor unresolved", map[string]any{
					"temporary_id": up.TemporaryID,
					"asset_id":     up.AssetID,
				})
			}
			fallback++
		}

		images = append(images, img)
	}

	return resolved, images
}
