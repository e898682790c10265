package web

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"io/fs"
	"log"
	"net/http"
	"strconv"

	"github.com/notepane/notepane/internal/config"
	"github.com/notepane/notepane/internal/db"
	"github.com/notepane/notepane/internal/errors"
	"github.com/notepane/notepane/internal/note"
	"github.com/notepane/notepane/internal/ops"
)

// maxSaveBodyBytes bounds the /save request body.
const maxSaveBodyBytes = 1 << 20

// Headings for storage failures on the debug views.
const (
	testDBErrorHeading    = "❌ DB Error"
	viewNotesErrorHeading = "Database Error"
)

// Handlers contains HTTP route handlers.
type Handlers struct {
	store    *db.Store
	cfg      *config.Config
	renderer *Renderer
	static   fs.FS
}

// saveError is the JSON body of a failed save.
type saveError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HandleTaskpane handles GET /: the add-in's task pane page.
func (h *Handlers) HandleTaskpane(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, h.static, "taskpane.html")
}

// HandleStatic returns a handler serving one embedded asset.
func (h *Handlers) HandleStatic(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, h.static, name)
	}
}

// HandleIcon handles the add-in icon and favicon routes with an empty 204.
func (h *Handlers) HandleIcon(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// HandleSave handles POST /save: persist a note from the task pane.
func (h *Handlers) HandleSave(w http.ResponseWriter, r *http.Request) {
	input, err := decodeSaveInput(http.MaxBytesReader(w, r.Body, maxSaveBodyBytes))
	if err != nil {
		h.saveFailed(w, err)
		return
	}

	result, err := ops.Save(r.Context(), h.store, h.cfg, input)
	if err != nil {
		h.saveFailed(w, err)
		return
	}

	log.Printf("saved note %d for %s", result.ID, note.DisplayEmail(input.UserEmail))
	renderJSON(w, http.StatusOK, result)
}

// decodeSaveInput decodes exactly one JSON object from body.
// An empty body decodes as {}; anything after the object is invalid.
func decodeSaveInput(body io.Reader) (ops.SaveInput, error) {
	var input ops.SaveInput
	dec := json.NewDecoder(body)
	if err := dec.Decode(&input); err != nil {
		if stderrors.Is(err, io.EOF) {
			return input, nil
		}
		return input, bodyError(err)
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); !stderrors.Is(err, io.EOF) {
		return input, bodyError(err)
	}
	return input, nil
}

// bodyError maps a /save decode failure to an invalid-request error.
func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.NewInvalidRequest("request body too large")
	}
	return errors.NewInvalidRequest("Invalid JSON")
}

// saveFailed writes the {status:"error", message} body with the error's status.
func (h *Handlers) saveFailed(w http.ResponseWriter, err error) {
	nErr := errors.As(err)
	if nErr.Status >= http.StatusInternalServerError {
		log.Printf("save: %v", err)
	}
	renderJSON(w, nErr.Status, saveError{Status: ops.StatusError, Message: nErr.Message})
}

// HandleTestDB handles GET /test-db: note count and the newest notes.
func (h *Handlers) HandleTestDB(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Stats(r.Context(), h.store)
	if err != nil {
		log.Printf("test-db: %v", err)
		h.renderer.renderDBError(w, testDBErrorHeading, err)
		return
	}

	h.renderer.renderPage(w, "test_db", TestDBPageData{
		PageData: h.renderer.pageData("Database"),
		Total:    result.Total,
		Recent:   result.Recent,
	})
}

// HandleViewNotes handles GET /view-notes: table of the newest notes.
func (h *Handlers) HandleViewNotes(w http.ResponseWriter, r *http.Request) {
	input := ops.ListInput{
		Limit: parseIntParam(r, "limit", 0),
	}

	result, err := ops.List(r.Context(), h.store, h.cfg, input)
	if err != nil {
		log.Printf("view-notes: %v", err)
		h.renderer.renderDBError(w, viewNotesErrorHeading, err)
		return
	}

	h.renderer.renderPage(w, "view_notes", ViewNotesPageData{
		PageData: h.renderer.pageData("Notes"),
		Items:    result.Items,
	})
}

// HandleNote handles GET /notes/{id}: a single note rendered as Markdown.
func (h *Handlers) HandleNote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("note id must be an integer"))
		return
	}

	result, err := ops.Get(r.Context(), h.store, ops.GetInput{ID: id})
	if err != nil {
		if errors.Is(err, errors.ErrStorage) {
			log.Printf("note %d: %v", id, err)
		}
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "note", NotePageData{
		PageData:     h.renderer.pageData("Note " + strconv.FormatInt(result.ID, 10)),
		Note:         result,
		RenderedHTML: renderMarkdown(result.NoteText),
		Chars:        note.CountChars(result.NoteText),
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
