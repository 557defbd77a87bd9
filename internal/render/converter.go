package render

import (
	"html"
	"regexp"
	"strings"

	"contentapi/internal/model"
)

// ConverterVersion identifies the current converter output format. It is
// persisted per post as render_version; stored posts with a lower version
// are re-rendered transiently on read until re-persisted (see Pipeline).
const ConverterVersion = 2

const imageContainerPrefix = `<div class="post-image">`

var orderedBulletRe = regexp.MustCompile(`^\d+\. `)

var headingLevels = []struct {
	prefix string
	tag    string
}{
	{"#### ", "h4"},
	{"### ", "h3"},
	{"## ", "h2"},
	{"# ", "h1"},
}

// listState tracks the open list container while converting line by line.
type listState int

const (
	stateNormal listState = iota
	stateUnorderedList
	stateOrderedList
)

// converter renders resolved markup against a post's attached images.
type converter struct {
	byAnchor  map[string]*model.PostImage
	byAssetID map[string]*model.PostImage
}

func newConverter(images []model.PostImage) *converter {
	c := &converter{
		byAnchor:  make(map[string]*model.PostImage, len(images)),
		byAssetID: make(map[string]*model.PostImage, len(images)),
	}
	for i := range images {
		img := &images[i]
		if img.Anchor != "" {
			c.byAnchor[img.Anchor] = img
		}
		c.byAssetID[img.AssetID] = img
	}
	return c
}

// ToHTML converts resolved post markup into HTML. It is a pure function of
// its inputs: for fixed (markup, images) the output is byte-identical
// across invocations, which is what makes read-path re-rendering
// idempotent. Malformed markup never errors; at worst a construct is
// emitted as literal text inside a paragraph.
func ToHTML(markup string, images []model.PostImage) string {
	c := newConverter(images)

	lines := strings.Split(normalizeLineEndings(markup), "\n")
	var out []string
	state := stateNormal

	closeList := func() {
		switch state {
		case stateUnorderedList:
			out = append(out, "</ul>")
		case stateOrderedList:
			out = append(out, "</ol>")
		}
		state = stateNormal
	}

	i := 0
	for i < len(lines) {
		line := lines[i]

		// Fenced code block: consume until the closing fence.
		if strings.HasPrefix(line, "```") {
			closeList()
			lang := strings.TrimSpace(line[3:])
			var code []string
			i++
			for i < len(lines) && !strings.HasPrefix(lines[i], "```") {
				code = append(code, html.EscapeString(lines[i]))
				i++
			}
			if i < len(lines) {
				i++ // closing fence
			}
			open := "<pre><code>"
			if lang != "" {
				open = `<pre><code class="language-` + html.EscapeString(lang) + `">`
			}
			out = append(out, open+strings.Join(code, "\n")+"</code></pre>")
			continue
		}

		if strings.TrimSpace(line) == "" {
			closeList()
			i++
			continue
		}

		// Headings, longest prefix first so #### is not read as # + ###.
		if tag, rest, ok := headingFor(line); ok {
			closeList()
			out = append(out, "<"+tag+">"+c.renderInline(rest)+"</"+tag+">")
			i++
			continue
		}

		if rest, ok := blockquoteContent(line); ok {
			closeList()
			out = append(out, "<blockquote>"+c.renderInline(rest)+"</blockquote>")
			i++
			continue
		}

		if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
			if state != stateUnorderedList {
				closeList()
				out = append(out, "<ul>")
				state = stateUnorderedList
			}
			out = append(out, "<li>"+c.renderInline(line[2:])+"</li>")
			i++
			continue
		}

		if m := orderedBulletRe.FindString(line); m != "" {
			if state != stateOrderedList {
				closeList()
				out = append(out, "<ol>")
				state = stateOrderedList
			}
			out = append(out, "<li>"+c.renderInline(line[len(m):])+"</li>")
			i++
			continue
		}

		closeList()

		// Already-tagged block lines pass through verbatim. A tag whose
		// closing bracket landed on a later line (split by the author or an
		// earlier editor) is merged forward into one line first.
		if strings.HasPrefix(strings.TrimSpace(line), "<") {
			merged := line
			for hasUnclosedTag(merged) && i+1 < len(lines) {
				i++
				merged += " " + strings.TrimSpace(lines[i])
			}
			out = append(out, merged)
			i++
			continue
		}

		rendered := c.renderInline(line)
		if strings.HasPrefix(rendered, imageContainerPrefix) && strings.HasSuffix(rendered, "</div>") {
			out = append(out, rendered)
		} else {
			out = append(out, "<p>"+rendered+"</p>")
		}
		i++
	}
	closeList()

	return strings.Join(out, "\n")
}

// renderInline renders one line's inline constructs from the lexer's token
// stream. Color spans left open by malformed input are closed at end of
// line; a stray closing delimiter is emitted literally.
func (c *converter) renderInline(s string) string {
	var b strings.Builder
	openSpans := 0
	for _, t := range lexInline(s) {
		switch t.kind {
		case tokenText:
			b.WriteString(t.body)
		case tokenBold:
			b.WriteString("<strong>" + c.renderInline(t.body) + "</strong>")
		case tokenItalic:
			b.WriteString("<em>" + c.renderInline(t.body) + "</em>")
		case tokenCode:
			b.WriteString("<code>" + html.EscapeString(t.body) + "</code>")
		case tokenLink:
			b.WriteString(`<a href="` + html.EscapeString(t.target) + `">` + c.renderInline(t.body) + "</a>")
		case tokenImage:
			b.WriteString(c.renderImage(t.body, t.target))
		case tokenColorOpen:
			b.WriteString(`<span style="color:` + t.color + `">`)
			openSpans++
		case tokenColorClose:
			if openSpans > 0 {
				b.WriteString("</span>")
				openSpans--
			} else {
				b.WriteString(colorClose)
			}
		}
	}
	for ; openSpans > 0; openSpans-- {
		b.WriteString("</span>")
	}
	return b.String()
}

// renderImage maps an image anchor to its attached image. Lookup is by the
// exact anchor string first, then by asset id for anchors whose alt text
// drifted after resolution. An image:<id> anchor with no attached image
// stays literal rather than producing a broken <img>.
func (c *converter) renderImage(alt, target string) string {
	anchor := "![" + alt + "](" + target + ")"
	if img, ok := c.byAnchor[anchor]; ok {
		return imageContainer(img.URL, altOrDefault(img.AltText))
	}
	if id, ok := strings.CutPrefix(target, imageScheme); ok {
		if img, ok := c.byAssetID[id]; ok {
			if alt == "" {
				alt = img.AltText
			}
			return imageContainer(img.URL, altOrDefault(alt))
		}
		return anchor
	}
	// Plain markdown image with a direct URL.
	return `<img src="` + html.EscapeString(target) + `" alt="` + html.EscapeString(altOrDefault(alt)) + `">`
}

func imageContainer(url, alt string) string {
	return imageContainerPrefix + `<img src="` + html.EscapeString(url) + `" alt="` + html.EscapeString(alt) + `"></div>`
}

func altOrDefault(alt string) string {
	if alt == "" {
		return DefaultAltText
	}
	return alt
}

func headingFor(line string) (tag, rest string, ok bool) {
	for _, h := range headingLevels {
		if strings.HasPrefix(line, h.prefix) {
			return h.tag, line[len(h.prefix):], true
		}
	}
	return "", "", false
}

func blockquoteContent(line string) (string, bool) {
	if line == ">" {
		return "", true
	}
	if strings.HasPrefix(line, "> ") {
		return line[2:], true
	}
	return "", false
}

// hasUnclosedTag reports whether the last tag opened on the line is missing
// its closing bracket, which triggers the forward line merge above.
func hasUnclosedTag(line string) bool {
	open := strings.LastIndexByte(line, '<')
	return open >= 0 && strings.IndexByte(line[open:], '>') < 0
}

func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
