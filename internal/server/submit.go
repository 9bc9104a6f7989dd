package server

import (
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/heysheet/heysheet/internal/sink"
	"github.com/heysheet/heysheet/internal/storage"
	submissiondomain "github.com/heysheet/heysheet/internal/submission/domain"
	"go.uber.org/zap"
)

const (
	// Text field values larger than this are rejected as abuse.
	maxFieldValueBytes = 1 << 20

	// Whole-request ceiling. Individual file limits come from the plan.
	maxRequestBodyBytes = 128 << 20
)

type submitResponse struct {
	Success     bool   `json:"success"`
	ID          string `json:"id,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Submit is the public endpoint form posts land on. It accepts multipart
// and urlencoded bodies, preserving the field order of the body so new
// spreadsheet columns appear in the order the form sends them.
func (s *Server) Submit(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBodyBytes)

	fields, files, cleanup, err := parseSubmitBody(c)
	defer cleanup()
	if err != nil {
		s.log.Debug("submit body rejected", zap.String("slug", slug), zap.Error(err))
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	record, utm := s.collector.Collect(c.Request.Context(), c.Request)

	resp, err := s.submissionSvc.Accept(c.Request.Context(), submissiondomain.AcceptRequest{
		Slug:      slug,
		Origin:    c.GetHeader("Origin"),
		Fields:    fields,
		Files:     files,
		Analytics: record,
		UTM:       utm,
	})
	if err != nil {
		status, payload := mapError(err)
		c.JSON(status, submitResponse{
			Success: false,
			Message: payload.Message,
		})
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, submitResponse{
		Success:     true,
		ID:          resp.ID.String(),
		RedirectURL: resp.RedirectURL,
	})
}

func parseSubmitBody(c *gin.Context) ([]sink.Field, []storage.File, func(), error) {
	contentType := c.ContentType()
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		return parseMultipart(c)
	case contentType == "application/x-www-form-urlencoded", contentType == "":
		fields, err := parseURLEncoded(c)
		return fields, nil, func() {}, err
	default:
		return nil, nil, func() {}, ErrInvalidRequest
	}
}

// parseMultipart walks the parts in body order. Value parts become fields;
// file parts are spooled to temp files so uploads can stream from them
// later. cleanup removes the temp files and always runs.
func parseMultipart(c *gin.Context) ([]sink.Field, []storage.File, func(), error) {
	var tmpPaths []string
	cleanup := func() {
		for _, path := range tmpPaths {
			os.Remove(path)
		}
	}

	reader, err := c.Request.MultipartReader()
	if err != nil {
		return nil, nil, cleanup, err
	}

	var (
		fields []sink.Field
		files  []storage.File
	)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, cleanup, err
		}

		name := part.FormName()
		if name == "" {
			part.Close()
			continue
		}

		if part.FileName() == "" {
			value, err := io.ReadAll(io.LimitReader(part, maxFieldValueBytes+1))
			part.Close()
			if err != nil {
				return nil, nil, cleanup, err
			}
			if len(value) > maxFieldValueBytes {
				return nil, nil, cleanup, ErrInvalidRequest
			}
			fields = append(fields, sink.Field{Name: name, Value: string(value)})
			continue
		}

		tmp, err := os.CreateTemp("", "heysheet-upload-*")
		if err != nil {
			part.Close()
			return nil, nil, cleanup, err
		}
		tmpPaths = append(tmpPaths, tmp.Name())

		size, err := io.Copy(tmp, part)
		part.Close()
		if cerr := tmp.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, nil, cleanup, err
		}

		path := tmp.Name()
		files = append(files, storage.File{
			FieldName:   name,
			Filename:    part.FileName(),
			Size:        size,
			ContentType: part.Header.Get("Content-Type"),
			Open: func() (io.ReadCloser, error) {
				return os.Open(path)
			},
		})
	}

	return fields, files, cleanup, nil
}

// parseURLEncoded decodes pairs by hand because url.ParseQuery returns a
// map and loses body order.
func parseURLEncoded(c *gin.Context) ([]sink.Field, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxFieldValueBytes*8))
	if err != nil {
		return nil, err
	}

	var fields []sink.Field
	for _, pair := range strings.Split(string(body), "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		name, err := url.QueryUnescape(key)
		if err != nil || name == "" {
			continue
		}
		decoded, err := url.QueryUnescape(value)
		if err != nil {
			decoded = value
		}
		fields = append(fields, sink.Field{Name: name, Value: decoded})
	}
	return fields, nil
}
