package source

import (
	"context"
	"image"

	"github.com/sirupsen/logrus"

	apperrors "github.com/ironsheep/image-marker-mcp/internal/errors"
	"github.com/ironsheep/image-marker-mcp/internal/imaging"
)

// Acquirer fetches and decodes images that are not local resources. Each
// call yields exactly one image or one error.
type Acquirer interface {
	Fetch(ctx context.Context, uri string) (image.Image, error)
}

// AcquirerFunc adapts a function to Acquirer.
type AcquirerFunc func(ctx context.Context, uri string) (image.Image, error)

// Fetch calls f.
func (f AcquirerFunc) Fetch(ctx context.Context, uri string) (image.Image, error) {
	return f(ctx, uri)
}

// Future is the one-shot result of an acquisition.
type Future struct {
	done chan struct{}
	img  *imaging.Raster
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) complete(img *imaging.Raster, err error) {
	f.img, f.err = img, err
	close(f.done)
}

// Done is closed once the result is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the acquisition completes. Exactly one of the results
// is non-nil. The raster passes to the caller, so a future has one reader.
func (f *Future) Await() (*imaging.Raster, error) {
	<-f.done
	return f.img, f.err
}

// Resolver turns image URIs into rasters. Local resources are decoded on the
// calling goroutine; everything else is handed to the acquirer on its own
// goroutine. The resolver does not cache.
type Resolver struct {
	acquirer  Acquirer
	resources Resources
	log       logrus.FieldLogger
}

// NewResolver creates a resolver.
func NewResolver(acquirer Acquirer, resources Resources, log logrus.FieldLogger) *Resolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{acquirer: acquirer, resources: resources, log: log}
}

// Resolve starts acquiring uri and returns its future. Dispatched
// acquisitions run to completion; ctx only bounds the acquirer's own work.
func (r *Resolver) Resolve(ctx context.Context, uri string) *Future {
	const op = "source.resolve"
	f := newFuture()
	kind := Classify(uri)
	log := r.log.WithFields(logrus.Fields{"uri": abbreviate(uri), "kind": kind.String()})

	if !kind.Async() {
		img, err := r.resources.Load(uri)
		if err != nil {
			log.WithError(err).Debug("local resource unavailable")
			f.complete(nil, apperrors.Wrap(apperrors.KindSourceUnavailable, op, err, "cannot load "+abbreviate(uri)))
			return f
		}
		f.complete(img, nil)
		return f
	}

	if r.acquirer == nil {
		f.complete(nil, apperrors.New(apperrors.KindFetchFailed, op, "no acquirer configured for %s", kind))
		return f
	}

	go func() {
		img, err := r.acquirer.Fetch(ctx, uri)
		switch {
		case err != nil:
			log.WithError(err).Debug("acquisition failed")
			f.complete(nil, apperrors.Wrap(apperrors.KindFetchFailed, op, err, "cannot fetch "+abbreviate(uri)))
		case img == nil:
			f.complete(nil, apperrors.New(apperrors.KindSourceUnavailable, op, "no image at %s", abbreviate(uri)))
		default:
			f.complete(imaging.FromImage(img), nil)
		}
	}()
	return f
}

// abbreviate keeps inline data URIs out of logs and messages.
func abbreviate(uri string) string {
	const limit = 64
	if len(uri) <= limit {
		return uri
	}
	return uri[:limit] + "..."
}
