package response

import (
	"encoding/json"
	"net/http"

	"github.com/futig/oportune/internal/entity"
)

// JSON writes data with the given status. Encoding errors after the header
// is sent cannot change the response and are dropped.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes an ErrorResponse whose error is the status text.
func Error(w http.ResponseWriter, status int, message, field string) {
	JSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Field:   field,
	})
}

// File writes an attachment download.
func File(w http.ResponseWriter, file *entity.ExportFile) {
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}
