package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kiesman99/mosaic/internal/api"
	"github.com/kiesman99/mosaic/internal/mosaic"
	"github.com/kiesman99/mosaic/internal/stitcher"
	"github.com/kiesman99/mosaic/internal/store"
	"github.com/kiesman99/mosaic/pkg/tile"
)

// TileCountHeader reports how many tiles a mosaic was built from.
const TileCountHeader = "X-Tile-Count"

// Server implements the ServerInterface from the generated API
type Server struct {
	startTime time.Time
	version   string
	stitcher  *stitcher.Stitcher
	timeout   time.Duration
	logger    *zap.Logger
}

// NewServer creates a new server instance. timeout is reported to clients
// whose request times out.
func NewServer(version string, st *stitcher.Stitcher, timeout time.Duration, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		startTime: time.Now(),
		version:   version,
		stitcher:  st,
		timeout:   timeout,
		logger:    logger,
	}
}

// GetHealth implements the health check endpoint
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	uptime := int(time.Since(s.startTime).Seconds())

	response := api.HealthResponse{
		Status:    api.Healthy,
		Timestamp: time.Now(),
		Uptime:    &uptime,
		Version:   &s.version,
	}

	s.writeJSON(w, http.StatusOK, response)
}

// CreateMosaic implements the main stitching endpoint
func (s *Server) CreateMosaic(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestID(r)

	var req api.CreateMosaicJSONRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON",
			"Invalid JSON in request body", &requestID, nil)
		return
	}

	opts, err := convertToStitcherOptions(&req)
	if err != nil {
		s.writeValidationErrorResponse(w, err, &requestID)
		return
	}

	s.stitch(w, r, opts, requestID)
}

// GetMosaic is CreateMosaic with the request in the query string
func (s *Server) GetMosaic(w http.ResponseWriter, r *http.Request, params api.GetMosaicParams) {
	requestID := getRequestID(r)

	req := api.MosaicRequest{
		Point1: api.GeoPoint{Lat: params.Lat1, Lon: params.Lon1},
		Point2: api.GeoPoint{Lat: params.Lat2, Lon: params.Lon2},
		Output: &api.OutputOptions{
			Width:  params.Width,
			Height: params.Height,
			Format: params.Format,
		},
	}
	opts, err := convertToStitcherOptions(&req)
	if err != nil {
		s.writeValidationErrorResponse(w, err, &requestID)
		return
	}

	s.stitch(w, r, opts, requestID)
}

func (s *Server) stitch(w http.ResponseWriter, r *http.Request, opts *stitcher.Options, requestID string) {
	result, err := s.stitcher.Stitch(r.Context(), opts)
	if err != nil {
		s.handleStitchingError(w, err, &requestID)
		return
	}

	s.logger.Debug("Stitched mosaic",
		zap.String("request_id", requestID),
		zap.Int("tiles", len(result.Tiles)),
		zap.Int("width", result.Width),
		zap.Int("height", result.Height))

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("X-Request-ID", requestID)
	w.Header().Set(TileCountHeader, strconv.Itoa(len(result.Tiles)))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.ImageData)))

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.ImageData); err != nil {
		s.logger.Warn("Error writing response", zap.String("request_id", requestID), zap.Error(err))
	}
}

// GetTile describes the tile at an address
func (s *Server) GetTile(w http.ResponseWriter, r *http.Request, address string) {
	rect, err := tile.Decode(address)
	if err != nil {
		requestID := getRequestID(r)
		s.writeValidationErrorResponse(w, &fieldError{field: "address", err: err}, &requestID)
		return
	}
	s.writeJSON(w, http.StatusOK, tileInfo(rect))
}

// LocateTile describes the tile containing a point
func (s *Server) LocateTile(w http.ResponseWriter, r *http.Request, params api.LocateTileParams) {
	p := api.GeoPoint{Lat: params.Lat, Lon: params.Lon}
	if err := validatePoint("point", p); err != nil {
		requestID := getRequestID(r)
		s.writeValidationErrorResponse(w, err, &requestID)
		return
	}
	s.writeJSON(w, http.StatusOK, tileInfo(tile.TileRect(p.Lat, p.Lon)))
}

// ParamErrorHandler reports malformed or missing parameters as validation
// errors.
func (s *Server) ParamErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	requestID := getRequestID(r)
	field := "request"
	var required *api.RequiredParamError
	var invalid *api.InvalidParamFormatError
	switch {
	case errors.As(err, &required):
		field = required.ParamName
	case errors.As(err, &invalid):
		field = invalid.ParamName
	}
	s.writeValidationErrorResponse(w, &fieldError{field: field, err: err}, &requestID)
}

func tileInfo(rect tile.GeoRect) api.TileInfo {
	return api.TileInfo{
		Address: tile.Encode(rect.Lat1, rect.Lon1).String(),
		Lat1:    rect.Lat1,
		Lon1:    rect.Lon1,
		Lat2:    rect.Lat2,
		Lon2:    rect.Lon2,
		Region:  tile.RegionOf(rect.Lat1, rect.Lon1, tile.DefaultRegionSize).String(),
	}
}

// fieldError is a validation failure of one request field.
type fieldError struct {
	field string
	err   error
}

func (e *fieldError) Error() string {
	return e.err.Error()
}

func (e *fieldError) Unwrap() error {
	return e.err
}

func validatePoint(field string, p api.GeoPoint) error {
	switch {
	case math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90:
		return &fieldError{field: field + ".lat", err: fmt.Errorf("latitude must be between -90 and 90")}
	case math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180:
		return &fieldError{field: field + ".lon", err: fmt.Errorf("longitude must be between -180 and 180")}
	}
	return nil
}

// convertToStitcherOptions validates the request and converts it to
// stitcher options
func convertToStitcherOptions(req *api.MosaicRequest) (*stitcher.Options, error) {
	if err := validatePoint("point1", req.Point1); err != nil {
		return nil, err
	}
	if err := validatePoint("point2", req.Point2); err != nil {
		return nil, err
	}

	opts := &stitcher.Options{
		Point1: tile.GeoPoint{Lat: req.Point1.Lat, Lon: req.Point1.Lon},
		Point2: tile.GeoPoint{Lat: req.Point2.Lat, Lon: req.Point2.Lon},
		Format: tile.OUTFMT_PNG,
	}

	if out := req.Output; out != nil {
		if out.Width != nil {
			opts.Width = *out.Width
		}
		if out.Height != nil {
			opts.Height = *out.Height
		}
		if out.Format != nil {
			format, err := tile.ParseFormat(string(*out.Format))
			if err != nil {
				return nil, &fieldError{field: "output.format", err: err}
			}
			opts.Format = format
		}
		if out.Worldfile != nil {
			opts.GenerateWorldFile = *out.Worldfile
		}
	}

	if err := opts.Validate(); err != nil {
		var optsErr *stitcher.OptionsError
		if errors.As(err, &optsErr) {
			return nil, &fieldError{field: "output." + optsErr.Field, err: errors.New(optsErr.Message)}
		}
		return nil, err
	}
	return opts, nil
}

// handleStitchingError handles errors from the stitching process
func (s *Server) handleStitchingError(w http.ResponseWriter, err error, requestID *string) {
	var (
		formatErr   *tile.FormatError
		decodeErr   *store.DecodeError
		tooLargeErr *stitcher.TooLargeError
		optsErr     *stitcher.OptionsError
	)

	switch {
	case errors.Is(err, mosaic.ErrNoChunksRequired):
		s.writeErrorResponse(w, http.StatusBadRequest, "NO_CHUNKS_REQUIRED",
			"The bounding box has no area", requestID, nil)
	case errors.As(err, &formatErr):
		s.writeErrorResponse(w, http.StatusBadRequest, "INVALID_ADDRESS",
			err.Error(), requestID, nil)
	case errors.As(err, &optsErr):
		s.writeValidationErrorResponse(w, &fieldError{field: "output." + optsErr.Field, err: err}, requestID)
	case errors.As(err, &tooLargeErr):
		s.writeErrorResponse(w, http.StatusBadRequest, "MOSAIC_TOO_LARGE",
			err.Error(), requestID, map[string]interface{}{
				"width":      tooLargeErr.Width,
				"height":     tooLargeErr.Height,
				"max_pixels": tooLargeErr.MaxPixels,
			})
	case errors.Is(err, store.ErrTileNotFound):
		s.writeErrorResponse(w, http.StatusNotFound, "TILE_NOT_FOUND",
			err.Error(), requestID, nil)
	case errors.As(err, &decodeErr):
		s.writeErrorResponse(w, http.StatusBadGateway, "TILE_DECODE_ERROR",
			err.Error(), requestID, map[string]interface{}{
				"address": decodeErr.Address.String(),
			})
	case errors.Is(err, context.DeadlineExceeded):
		s.writeErrorResponse(w, http.StatusGatewayTimeout, "TILE_STORE_TIMEOUT",
			"Tile store requests timed out", requestID, map[string]interface{}{
				"timeout_seconds": int(s.timeout.Seconds()),
			})
	default:
		s.logger.Error("Stitching failed", zap.Stringp("request_id", requestID), zap.Error(err))
		s.writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"Internal server error", requestID, nil)
	}
}

// writeErrorResponse writes a standard error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string, requestID *string, details map[string]interface{}) {
	response := api.ErrorResponse{
		Error:     errorCode,
		Message:   message,
		RequestId: requestID,
	}

	if details != nil {
		response.Details = &details
	}

	s.writeJSON(w, statusCode, response)
}

// writeValidationErrorResponse writes a validation error response
func (s *Server) writeValidationErrorResponse(w http.ResponseWriter, err error, requestID *string) {
	field := "request"
	var fe *fieldError
	if errors.As(err, &fe) {
		field = fe.field
	}

	response := api.ValidationErrorResponse{
		Error:     api.VALIDATIONERROR,
		Message:   err.Error(),
		RequestId: requestID,
		ValidationErrors: []struct {
			Code    *string `json:"code,omitempty"`
			Field   string  `json:"field"`
			Message string  `json:"message"`
		}{
			{
				Field:   field,
				Message: err.Error(),
			},
		},
	}

	s.writeJSON(w, http.StatusBadRequest, response)
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Error encoding response", zap.Error(err))
	}
}

// getRequestID returns the id assigned by the request id middleware, or a
// fresh one.
func getRequestID(r *http.Request) string {
	if requestID := middleware.GetReqID(r.Context()); requestID != "" {
		return requestID
	}
	return uuid.NewString()
}
