package render

import (
	"strings"
	"testing"

	"contentapi/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_Render(t *testing.T) {
	p := NewPipeline(200)

	raw := "# Title\n\nsome intro text\n\n" + ImageAnchor("chart", "tmp-1")
	uploads := []UploadDescriptor{
		{TemporaryID: "tmp-1", AssetID: "asset-1", URL: "https://cdn/a.png", AltText: "chart"},
	}

	res := p.Render(raw, nil, uploads)

	assert.NotContains(t, res.ResolvedContent, "tmp-1")
	assert.Contains(t, res.ResolvedContent, ImageAnchor("chart", "asset-1"))
	assert.Contains(t, res.RenderedContent, "<h1>Title</h1>")
	assert.Equal(t, 1, strings.Count(res.RenderedContent, "<img"))
	assert.Contains(t, res.RenderedContent, `src="https://cdn/a.png"`)
	assert.Equal(t, 1, res.ReadTimeMinutes)
	assert.Equal(t, ConverterVersion, res.RenderVersion)
	require.Len(t, res.Images, 1)
	assert.Equal(t, ImageAnchor("chart", "asset-1"), res.Images[0].Anchor)
}

func TestPipeline_RenderDeterministic(t *testing.T) {
	p := NewPipeline(200)
	raw := "# t\n- a\n- b\n\n{color:#00ff00}ok{/color}\n" + ImageAnchor("x", "tmp-1")
	uploads := []UploadDescriptor{
		{TemporaryID: "tmp-1", AssetID: "a1", URL: "https://cdn/x.png", AltText: "x"},
	}

	first := p.Render(raw, nil, uploads)
	second := p.Render(raw, nil, uploads)

	assert.Equal(t, first.ResolvedContent, second.ResolvedContent)
	assert.Equal(t, first.RenderedContent, second.RenderedContent)

	// Converting the resolved output again changes nothing.
	assert.Equal(t, first.RenderedContent, ToHTML(first.ResolvedContent, first.Images))
}

func TestPipeline_NewImagePositionsContinue(t *testing.T) {
	p := NewPipeline(200)
	existing := []model.PostImage{
		{AssetID: "a1", URL: "u1", AltText: "one", Anchor: ImageAnchor("one", "a1"), Position: 0},
	}
	uploads := []UploadDescriptor{
		{TemporaryID: "tmp-2", AssetID: "a2", URL: "u2", AltText: "two"},
	}

	res := p.Render(ImageAnchor("one", "a1")+"\n"+ImageAnchor("two", "tmp-2"), existing, uploads)

	require.Len(t, res.Images, 2)
	assert.Equal(t, 0, res.Images[0].Position)
	assert.Equal(t, "a1", res.Images[0].AssetID)
	assert.Equal(t, 1, res.Images[1].Position)
	assert.Equal(t, "a2", res.Images[1].AssetID)
}

func TestPipeline_NeedsRenderAndHeal(t *testing.T) {
	p := NewPipeline(200)

	post := &model.Post{
		RawContent:      "# healed\n\nbody text",
		RenderedContent: "<h1>wrong output from an old converter</h1>",
		RenderVersion:   ConverterVersion - 1,
	}

	require.True(t, p.NeedsRender(post))

	p.Heal(post)

	assert.False(t, p.NeedsRender(post))
	assert.Equal(t, "<h1>healed</h1>\n<p>body text</p>", post.RenderedContent)
	assert.Equal(t, 1, post.ReadTimeMinutes)

	// Healing an already-correct post is a no-op.
	before := *post
	p.Heal(post)
	assert.Equal(t, before.RenderedContent, post.RenderedContent)
	assert.Equal(t, before.ReadTimeMinutes, post.ReadTimeMinutes)
}

func TestPipeline_NeverRenderedNeedsRender(t *testing.T) {
	p := NewPipeline(200)
	post := &model.Post{RawContent: "text", RenderVersion: 0}

	assert.True(t, p.NeedsRender(post))
	assert.False(t, post.Rendered())
}
