package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/portfolio/backend/internal/service"
	"github.com/portfolio/backend/internal/validation"
)

const maxContactBody = 64 << 10

// ContactHandler handles the public contact form endpoint.
type ContactHandler struct {
	contactService service.ContactService
}

// NewContactHandler creates a ContactHandler with the given service.
func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// Submit handles POST /api/contact. The body may be JSON, urlencoded or multipart.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	raw, err := readForm(w, r, validation.Fields)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": service.MsgInvalid,
		})
		return
	}

	res := h.contactService.Submit(r.Context(), raw)
	writeJSON(w, submitStatus(res), res)
}

func submitStatus(res *service.SubmitResult) int {
	if res.Err == nil {
		return http.StatusCreated
	}
	switch res.Err.Kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindPersistence:
		return http.StatusInternalServerError
	case service.KindNotification:
		if res.Success {
			return http.StatusCreated
		}
		return http.StatusBadGateway
	case service.KindAuth:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

var errUnsupportedBody = errors.New("unsupported content type")

// readForm collects the named string fields from a JSON or form body.
// Missing or non-string values are left out.
func readForm(w http.ResponseWriter, r *http.Request, fields []string) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxContactBody)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	out := make(map[string]string, len(fields))
	switch mediaType {
	case "application/json", "":
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, err
		}
		for _, f := range fields {
			if s, ok := body[f].(string); ok {
				out[f] = s
			}
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxContactBody); err != nil {
			return nil, err
		}
		for _, f := range fields {
			out[f] = r.PostFormValue(f)
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		for _, f := range fields {
			out[f] = r.PostForm.Get(f)
		}
	default:
		return nil, errUnsupportedBody
	}
	return out, nil
}
