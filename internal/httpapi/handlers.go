package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ironsheep/image-marker-mcp/internal/errors"
	"github.com/ironsheep/image-marker-mcp/internal/marker"
	"github.com/ironsheep/image-marker-mcp/internal/wire"
)

const errorKindKey = "error_kind"

// Marker runs marking requests.
type Marker interface {
	Mark(ctx context.Context, req marker.Request) (string, error)
}

// Handler serves the marking endpoints. Results are written under outputDir
// and their paths returned; the files themselves are not served.
type Handler struct {
	marker    Marker
	outputDir string
}

func NewHandler(m Marker, outputDir string) *Handler {
	return &Handler{marker: m, outputDir: outputDir}
}

// MarkText draws text at x/y or at a position keyword.
func (h *Handler) MarkText(c *gin.Context) {
	var args wire.TextArgs
	if !bind(c, &args) {
		return
	}
	req, err := args.Request(h.outputDir)
	h.run(c, req, err)
}

// MarkImage overlays a marker image at x/y or at a position keyword.
func (h *Handler) MarkImage(c *gin.Context) {
	var args wire.ImageArgs
	if !bind(c, &args) {
		return
	}
	req, err := args.Request(h.outputDir)
	h.run(c, req, err)
}

// MarkObjects paints an element list.
func (h *Handler) MarkObjects(c *gin.Context) {
	var args wire.ObjectsArgs
	if !bind(c, &args) {
		return
	}
	if len(args.Markers) == 0 {
		fail(c, apperrors.New(apperrors.KindLayoutError, "httpapi.objects", "markers is empty"))
		return
	}
	req, err := args.Request(h.outputDir)
	h.run(c, req, err)
}

func bind(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.Set(errorKindKey, "Error")
		c.JSON(http.StatusBadRequest, wire.ErrorBody{Kind: "Error", Message: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (h *Handler) run(c *gin.Context, req marker.Request, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	path, err := h.marker.Mark(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, wire.Result{Path: path})
}

func fail(c *gin.Context, err error) {
	body := wire.ErrorOf(err)
	c.Set(errorKindKey, body.Kind)
	c.JSON(StatusOf(err), body)
}

// StatusOf maps an error kind to an HTTP status.
func StatusOf(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindSourceUnavailable:
		return http.StatusNotFound
	case apperrors.KindFetchFailed:
		return http.StatusBadGateway
	case apperrors.KindInvalidScale, apperrors.KindInvalidColor, apperrors.KindLayoutError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
