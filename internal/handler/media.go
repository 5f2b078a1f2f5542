package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/Renatopaccha/Dental-Gest/internal/apierror"

	"github.com/gin-gonic/gin"
)

// MediaStore persists uploads. Implemented by infra.MediaStore.
type MediaStore interface {
	Save(subdir string, fh *multipart.FileHeader) (string, error)
	Delete(rel string)
}

// saveUpload stores the multipart field under subdir and returns the relative path.
func saveUpload(c *gin.Context, media MediaStore, field, subdir string) (string, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{field: "Debe adjuntar un archivo."}))
		return "", false
	}
	rel, err := media.Save(subdir, fh)
	if err != nil {
		respondError(c, err)
		return "", false
	}
	return rel, true
}

// replaceUpload drops the new file when the database write failed, or the
// previous file once the new one is recorded.
func replaceUpload(media MediaStore, rel string, previous *string, err error) {
	if err != nil {
		media.Delete(rel)
		return
	}
	if previous != nil && *previous != "" && *previous != rel {
		media.Delete(*previous)
	}
}
