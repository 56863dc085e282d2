package marker

import (
	"context"
	"image"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-marker-mcp/internal/imaging"
	"github.com/ironsheep/image-marker-mcp/internal/source"
)

// ImageResolver starts acquiring an image.
type ImageResolver interface {
	Resolve(ctx context.Context, uri string) *source.Future
}

// FontSource supplies fonts, falling back to a default on unknown names.
type FontSource interface {
	ResolveOrDefault(name string, style imaging.FontStyle) *imaging.Font
}

// Options configures a Service.
type Options struct {
	// Workers bounds how many submitted requests run at once.
	Workers int
	// Margins selects the bottom-row image margin policy.
	Margins imaging.MarginPolicy
	// MaxPixels caps the area of any scaled image; zero means
	// imaging.DefaultMaxPixels.
	MaxPixels int64
}

// Outcome is the single result of a submitted request.
type Outcome struct {
	ID   string
	Path string
	Err  error
}

// Service runs marking requests.
type Service struct {
	images  ImageResolver
	fonts   FontSource
	margins imaging.MarginPolicy
	maxPix  int64
	slots   chan struct{}
	log     logrus.FieldLogger
}

// NewService creates a service.
func NewService(images ImageResolver, fonts FontSource, opts Options, log logrus.FieldLogger) *Service {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		images:  images,
		fonts:   fonts,
		margins: opts.Margins,
		maxPix:  opts.MaxPixels,
		slots:   make(chan struct{}, opts.Workers),
		log:     log,
	}
}

// Submit runs req on a worker slot and delivers exactly one Outcome on the
// returned channel. The caller is never blocked.
func (s *Service) Submit(ctx context.Context, req Request) <-chan Outcome {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	out := make(chan Outcome, 1)
	go func() {
		s.slots <- struct{}{}
		defer func() { <-s.slots }()

		path, err := s.Mark(ctx, req)
		out <- Outcome{ID: req.ID, Path: path, Err: err}
		close(out)
	}()
	return out
}

// Mark runs req to completion and returns the destination path.
func (s *Service) Mark(ctx context.Context, req Request) (string, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	r := newRun(req.ID, s.log)

	if err := req.Validate(); err != nil {
		return "", r.fail(err)
	}

	var (
		out *imaging.Raster
		err error
	)
	if req.objects() {
		out, err = s.markObjects(ctx, r, req)
	} else {
		out, err = s.markSingle(ctx, r, req)
	}
	if err != nil {
		return "", r.fail(err)
	}

	r.enter(StateEncoding)
	path, err := imaging.Write(out, req.Encode)
	if err != nil {
		return "", r.fail(err)
	}
	r.done(path)
	return path, nil
}

// MarkText writes text onto the background at placement.
func (s *Service) MarkText(ctx context.Context, bg ImageRef, bgScale float64, text TextMarker, placement imaging.Placement, enc imaging.EncodeSpec) (string, error) {
	return s.Mark(ctx, Request{
		Background:      bg,
		BackgroundScale: bgScale,
		Marker:          text,
		Placement:       placement,
		Encode:          enc,
	})
}

// MarkImage overlays a marker image onto the background at placement.
func (s *Service) MarkImage(ctx context.Context, bg ImageRef, bgScale float64, mk ImageMarker, placement imaging.Placement, enc imaging.EncodeSpec) (string, error) {
	return s.Mark(ctx, Request{
		Background:      bg,
		BackgroundScale: bgScale,
		Marker:          mk,
		Placement:       placement,
		Encode:          enc,
	})
}

// MarkObjects paints elements onto the background in order.
func (s *Service) MarkObjects(ctx context.Context, bg ImageRef, bgScale float64, elements []Element, enc imaging.EncodeSpec) (string, error) {
	return s.Mark(ctx, Request{
		Background:      bg,
		BackgroundScale: bgScale,
		Elements:        elements,
		Encode:          enc,
	})
}

// acquired is the result of one acquisition.
type acquired struct {
	img *imaging.Raster
	err error
}

// acquireAll resolves every uri concurrently and waits for all of them. The
// results are in uri order; the error is the first failure in that order.
func (s *Service) acquireAll(ctx context.Context, uris []string) ([]acquired, error) {
	futures := make([]*source.Future, len(uris))
	for i, uri := range uris {
		futures[i] = s.images.Resolve(ctx, uri)
	}

	results := make([]acquired, len(uris))
	var g errgroup.Group
	for i, f := range futures {
		g.Go(func() error {
			img, err := f.Await()
			results[i] = acquired{img: img, err: err}
			return err
		})
	}
	if g.Wait() == nil {
		return results, nil
	}
	for _, res := range results {
		if res.err != nil {
			return results, res.err
		}
	}
	return results, nil
}

func releaseAcquired(results []acquired) {
	for _, res := range results {
		res.img.Release()
	}
}

func (s *Service) markSingle(ctx context.Context, r *run, req Request) (*imaging.Raster, error) {
	r.enter(StateAcquiring)

	uris := []string{req.Background.URI}
	im, isImage := req.Marker.(ImageMarker)
	if isImage {
		uris = append(uris, im.Image.URI)
	}
	results, err := s.acquireAll(ctx, uris)
	if err != nil {
		releaseAcquired(results)
		return nil, err
	}

	r.enter(StateScaling)
	bg, err := imaging.ScaleWithin(results[0].img, req.BackgroundScale, s.maxPix)
	if err != nil {
		releaseAcquired(results)
		return nil, err
	}
	var mk *imaging.Raster
	if isImage {
		if mk, err = imaging.ScaleWithin(results[1].img, im.Scale, s.maxPix); err != nil {
			imaging.ReleaseAll(bg, results[1].img)
			return nil, err
		}
	}

	r.enter(StateComposing)
	canvas, err := imaging.NewCanvas(bg)
	if err != nil {
		mk.Release()
		return nil, err
	}

	switch m := req.Marker.(type) {
	case ImageMarker:
		at := imaging.PlaceImage(req.Placement, mk.Size(), canvas.Size(), s.margins)
		err = canvas.DrawImage(mk, at)
	case TextMarker:
		err = s.drawText(canvas, m, imaging.StyleNormal, func(box image.Point, _ int) image.Point {
			return imaging.PlaceText(req.Placement, box, canvas.Size())
		})
	}
	if err != nil {
		canvas.Discard()
		return nil, err
	}
	return canvas.Finish(), nil
}

func (s *Service) markObjects(ctx context.Context, r *run, req Request) (*imaging.Raster, error) {
	r.enter(StateAcquiring)

	// The background is index 0; image elements follow in element order.
	uris := []string{req.Background.URI}
	slot := make([]int, len(req.Elements))
	for i, el := range req.Elements {
		if el.Kind == ElementImage {
			slot[i] = len(uris)
			uris = append(uris, el.Image.URI)
		}
	}
	results, _ := s.acquireAll(ctx, uris)
	if results[0].err != nil {
		releaseAcquired(results)
		return nil, results[0].err
	}
	r.log.WithField("elements", len(req.Elements)).Debug("object acquisitions joined")

	r.enter(StateScaling)
	bg, err := imaging.ScaleWithin(results[0].img, req.BackgroundScale, s.maxPix)
	if err != nil {
		releaseAcquired(results)
		return nil, err
	}
	for i, el := range req.Elements {
		res := &results[slot[i]]
		if el.Kind != ElementImage || res.err != nil {
			continue
		}
		scaled, err := imaging.ScaleWithin(res.img, el.Scale, s.maxPix)
		if err != nil {
			res.img.Release()
			res.img, res.err = nil, err
			continue
		}
		res.img = scaled
	}

	r.enter(StateComposing)
	canvas, err := imaging.NewCanvas(bg)
	if err != nil {
		releaseAcquired(results[1:])
		return nil, err
	}

	// Every resolved element is painted; the first failure in element
	// order fails the request.
	var firstErr error
	for i, el := range req.Elements {
		var err error
		switch el.Kind {
		case ElementImage:
			res := results[slot[i]]
			if res.err != nil {
				err = res.err
				break
			}
			err = canvas.DrawImage(res.img, image.Pt(el.X, el.Y))
		case ElementText:
			// y is the baseline of the first line.
			err = s.drawText(canvas, el.Text, imaging.StyleBold, func(_ image.Point, baseline int) image.Point {
				return image.Pt(el.X, el.Y-baseline)
			})
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	releaseAcquired(results[1:])

	if firstErr != nil {
		canvas.Discard()
		return nil, firstErr
	}
	return canvas.Finish(), nil
}

// drawText lays out m across the canvas width and paints it where place puts
// its bounding box. place also gets the first line's baseline, measured from
// the top of the box.
func (s *Service) drawText(canvas *imaging.Canvas, m TextMarker, style imaging.FontStyle, place func(box image.Point, baseline int) image.Point) error {
	color := m.Color
	if color == "" {
		color = "#000000"
	}
	fill, err := imaging.ParseColor(color)
	if err != nil {
		return err
	}

	ts := imaging.TextStyle{Color: fill}
	if m.Shadow != nil {
		sc, err := imaging.ParseColor(m.Shadow.Color)
		if err != nil {
			return err
		}
		ts.Shadow = &imaging.Shadow{Radius: m.Shadow.Radius, Dx: m.Shadow.Dx, Dy: m.Shadow.Dy, Color: sc}
	}

	layout, err := imaging.NewLayout(m.Text, canvas.Size().X, s.fonts.ResolveOrDefault(m.FontName, style), m.FontSize)
	if err != nil {
		return err
	}
	defer layout.Close()

	w, h := layout.Bounds()
	return canvas.DrawText(layout, place(image.Pt(w, h), layout.Ascent()), ts)
}
