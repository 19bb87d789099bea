package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// xlsxContentType is the registered media type for XLSX workbooks.
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves the XLSX report.
type ExportHandler struct {
	deps Dependencies
	now  func() time.Time
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps Dependencies) *ExportHandler {
	return &ExportHandler{deps: deps, now: time.Now}
}

// HandleExport handles GET /export.xlsx. The workbook is buffered so a
// failure can still be reported as JSON.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.deps.Export(r.Context(), &buf); err != nil {
		writeFailure(r.Context(), w, "api.export", err)
		return
	}
	name := fmt.Sprintf("chapterboard-%s.xlsx", h.now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
