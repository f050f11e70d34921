package server

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	sheetreplace "github.com/ideamans/go-sheetreplace"
)

const (
	headerProcessedCount    = "X-Processed-Files-Count"
	headerTotalReplacements = "X-Total-Replacements"
	headerFailedCount       = "X-Failed-Files-Count"
	headerFailedFiles       = "X-Failed-Files"

	maxFieldBytes = 64 << 10
)

var errBadRequest = errors.Base("bad request")

// handleProcess accepts multipart fields find, replace and one or more file
// parts, and answers with the zip bundle.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	req, err := readRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Debug().Int("uploads", len(req.Uploads)).Msg("upload received")

	bundle, batch, err := s.processor.Process(ctx, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "application/zip")
	h.Set("Content-Disposition", `attachment; filename="`+bundle.Filename+`"`)
	h.Set("Content-Length", strconv.Itoa(len(bundle.Data)))
	h.Set(headerProcessedCount, strconv.Itoa(bundle.Metadata.FileCount))
	h.Set(headerTotalReplacements, strconv.Itoa(bundle.Metadata.TotalReplacedCount))
	h.Set(headerFailedCount, strconv.Itoa(bundle.Metadata.FailedCount))
	if len(batch.Failures) > 0 {
		names := make([]string, 0, len(batch.Failures))
		for _, f := range batch.Failures {
			names = append(names, url.PathEscape(f.Filename))
		}
		h.Set(headerFailedFiles, strings.Join(names, ","))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(bundle.Data); err != nil {
		logger.Warn().Err(err).Msg("writing response failed")
	}
}

func readRequest(r *http.Request) (*sheetreplace.Request, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, errors.Errorf("%w: %s", errBadRequest, err.Error())
	}

	req := &sheetreplace.Request{}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Errorf("reading multipart body: %w", err)
		}

		switch part.FormName() {
		case "find":
			req.Spec.Find, err = readField(part)
		case "replace":
			req.Spec.Replace, err = readField(part)
		case "file":
			var data []byte
			data, err = io.ReadAll(part)
			if err == nil {
				req.Uploads = append(req.Uploads, sheetreplace.Upload{Filename: part.FileName(), Data: data})
			}
		}
		part.Close()
		if err != nil {
			return nil, err
		}
	}
	return req, nil
}

func readField(part *multipart.Part) (string, error) {
	data, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
	if err != nil {
		return "", errors.Errorf("reading field %q: %w", part.FormName(), err)
	}
	if len(data) > maxFieldBytes {
		return "", errors.Errorf("%w: field %q is too long", errBadRequest, part.FormName())
	}
	if !utf8.Valid(data) {
		return "", errors.Errorf("%w: field %q is not valid UTF-8", errBadRequest, part.FormName())
	}
	return string(data), nil
}

// statusFor maps pipeline errors to HTTP status codes
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, sheetreplace.ErrExtractLimit):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest), errors.Is(err, sheetreplace.ErrIngestion):
		return http.StatusBadRequest
	case errors.Is(err, sheetreplace.ErrAllFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	zerolog.Ctx(r.Context()).Warn().Err(err).Int("status", status).Msg("request failed")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":      err.Error(),
		"request_id": w.Header().Get(requestIDHeader),
	})
}
