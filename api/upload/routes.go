package upload

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi"

	"github.com/food-connect-platform/food-connect-api/env"
	"github.com/food-connect-platform/food-connect-api/upload"
	"github.com/food-connect-platform/food-connect-api/util"
)

const multipartPartKey string = "file"

// sniffLength is how much of the file http.DetectContentType looks at
const sniffLength = 512

// Routes creates a new Chi router with all of the routes for food image uploads,
// at the root level
func Routes(uploadProvider upload.Provider) *chi.Mux {
	router := chi.NewRouter()

	// Load the valid list of mime types from the environment
	validMimeTypes := make(map[string]struct{})
	for _, m := range env.GetListEnv("UPLOAD_MIME_TYPES", nil) {
		validMimeTypes[m] = struct{}{}
	}

	// Without an explicit list, any image type is accepted
	validMime := func(m string) bool {
		if len(validMimeTypes) == 0 {
			return strings.HasPrefix(m, "image/")
		}

		_, ok := validMimeTypes[m]
		return ok
	}

	router.Post("/", Upload(uploadProvider, validMime))
	return router
}

// Upload provides a pass-through route that takes in a multi-part
// HTTP request and uploads it to the file store,
// returning a URL that can be used as a food's image
func Upload(uploadProvider upload.Provider, validMime func(string) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Limit the read size to the configured size
		r.Body = http.MaxBytesReader(w, r.Body, uploadProvider.MaxBytes())

		// Get the multipart part for the file
		mr, err := r.MultipartReader()
		if err != nil {
			util.Error(w, r, util.NewBadRequestError("expected a multipart form: %s", err), "Failed to upload file")
			return
		}
		var uploadFile *multipart.Part
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				util.Error(w, r, util.NewBadRequestError("malformed multipart form: %s", err), "Failed to upload file")
				return
			}

			if p.FormName() == multipartPartKey {
				uploadFile = p
				break
			}
		}

		// Ensure a file was passed in
		if uploadFile == nil {
			util.Error(w, r,
				util.NewBadRequestError("expected multipart form submission with '%s' entry", multipartPartKey),
				"Failed to upload file")
			return
		}

		// Only the first 512 bytes are used to sniff the content type,
		// so create a multi-reader to pass the whole file on
		headerBuffer := make([]byte, sniffLength)
		n, err := io.ReadFull(uploadFile, headerBuffer)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			util.Error(w, r, err, "Failed to upload file")
			return
		}
		headerBuffer = headerBuffer[:n]
		fileReader := io.MultiReader(bytes.NewReader(headerBuffer), uploadFile)

		contentType := http.DetectContentType(headerBuffer)
		if contentType == "application/octet-stream" || !validMime(contentType) {
			util.Error(w, r,
				util.NewBadRequestError("unsupported file upload MIME type '%s'", contentType),
				"Failed to upload file")
			return
		}

		// Derive the file extension based on the MIME type
		fileExtensions, err := mime.ExtensionsByType(contentType)
		if err != nil || len(fileExtensions) == 0 {
			util.Error(w, r,
				util.NewBadRequestError("unsupported file upload MIME type '%s'", contentType),
				"Failed to upload file")
			return
		}

		// Stream the file into the upload provider
		fileURL, err := uploadProvider.Upload(r.Context(), fileReader, fileExtensions[0], contentType)
		if err != nil {
			util.Error(w, r, err, "Failed to upload file")
			return
		}

		util.JSON(w, r, http.StatusOK, map[string]interface{}{"url": fileURL})
	}
}
