// Package upload reads multipart files from gin requests.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"selkie-backend/pkg/objectstore"

	"github.com/gin-gonic/gin"
)

var ErrMissingFile = errors.New("file is required")

// FromForm opens the multipart file under field. The returned closer must be
// called once the object has been consumed.
func FromForm(c *gin.Context, field string) (objectstore.Object, io.Closer, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return objectstore.Object{}, nil, ErrMissingFile
		}
		return objectstore.Object{}, nil, fmt.Errorf("read form file %s: %w", field, err)
	}
	return Open(header)
}

// Optional is like FromForm but reports ok=false when the field is absent.
func Optional(c *gin.Context, field string) (obj objectstore.Object, closer io.Closer, ok bool, err error) {
	obj, closer, err = FromForm(c, field)
	if errors.Is(err, ErrMissingFile) {
		return objectstore.Object{}, nil, false, nil
	}
	if err != nil {
		return objectstore.Object{}, nil, false, err
	}
	return obj, closer, true, nil
}

func Open(header *multipart.FileHeader) (objectstore.Object, io.Closer, error) {
	f, err := header.Open()
	if err != nil {
		return objectstore.Object{}, nil, fmt.Errorf("open upload %s: %w", header.Filename, err)
	}
	contentType := header.Header.Get("Content-Type")
	return objectstore.Object{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        f,
	}, f, nil
}

// LimitBody caps the request body for upload routes.
func LimitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// IsTooLarge reports whether err came from a body cut off by LimitBody.
func IsTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
