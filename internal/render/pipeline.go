package render

import (
	"encoding/json"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"contentapi/internal/model"
)

// renderDuration observes one full pipeline run (resolve, convert, estimate).
var renderDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
	Name:    "content_render_duration_seconds",
	Help:    "Duration of one content rendering pipeline run.",
	Buckets: prometheus.DefBuckets,
})

// RegisterMetrics registers pipeline metrics on the given registerer.
func RegisterMetrics(reg prometheus.Registerer) error {
	return reg.Register(renderDuration)
}

// Pipeline derives rendered HTML and read time from a post's raw content
// and images. Every stage is a pure function of its inputs; Pipeline
// carries configuration only and is safe for concurrent use without
// coordination.
type Pipeline struct {
	wordsPerMinute int
}

// NewPipeline constructs a Pipeline. A non-positive wordsPerMinute falls
// back to DefaultWordsPerMinute.
func NewPipeline(wordsPerMinute int) *Pipeline {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	return &Pipeline{wordsPerMinute: wordsPerMinute}
}

// Result carries everything one pipeline run derived. ResolvedContent is
// the new raw content (temporary anchors rewritten) and must be persisted
// alongside the derived fields.
type Result struct {
	ResolvedContent string
	RenderedContent string
	ReadTimeMinutes int
	Images          []model.PostImage
	RenderVersion   int
}

// Render runs resolve, convert and estimate. existing are the post's
// already-attached images in insertion order; uploads are newly completed
// uploads to resolve into the content. Positions of new images continue
// after the existing ones.
func (p *Pipeline) Render(rawContent string, existing []model.PostImage, uploads []UploadDescriptor) Result {
	start := time.Now()

	resolved, added := Resolve(rawContent, uploads)
	for i := range added {
		added[i].Position = len(existing) + i
	}
	images := make([]model.PostImage, 0, len(existing)+len(added))
	images = append(images, existing...)
	images = append(images, added...)

	res := Result{
		ResolvedContent: resolved,
		RenderedContent: ToHTML(resolved, images),
		ReadTimeMinutes: ReadTime(resolved, p.wordsPerMinute),
		Images:          images,
		RenderVersion:   ConverterVersion,
	}
	renderDuration.Observe(time.Since(start).Seconds())
	return res
}

// NeedsRender reports whether a stored post's derived fields predate the
// current converter (or were never computed) and should be recomputed.
func (p *Pipeline) NeedsRender(post *model.Post) bool {
	return post.RenderVersion < ConverterVersion
}

// Heal recomputes the derived fields of post in place without touching its
// raw content or images. Callers decide whether to persist the result;
// read paths apply it transiently to correct output produced by older
// converter versions. Conversion is deterministic, so healing an
// already-correct post changes nothing.
func (p *Pipeline) Heal(post *model.Post) {
	res := p.Render(post.RawContent, post.Images, nil)
	post.RenderedContent = res.RenderedContent
	post.ReadTimeMinutes = res.ReadTimeMinutes
	post.RenderVersion = res.RenderVersion
}

// logWarn emits one JSON object per line, the same log shape used by the
// rest of the service.
func logWarn(msg string, fields map[string]any) {
	entry := map[string]any{
		"ts":        time.Now().UTC().Format(time.RFC3339Nano),
		"level":     "warn",
		"component": "render",
		"msg":       msg,
	}
	for k, v := range fields {
		entry[k] = v
	}
	if b, err := json.Marshal(entry); err == nil {
		log.SetFlags(0)
		log.Println(string(b))
	}
}
