package controllers

import (
	"errors"
	"net/http"
	"strings"
	"todolist-restful/services"

	restful "github.com/emicklei/go-restful/v3"
)

// wantsHTML reports whether the client is a browser form post expecting a
// redirect rather than a JSON body.
func wantsHTML(req *restful.Request) bool {
	return strings.Contains(req.HeaderParameter("Accept"), "text/html")
}

// redirect sends a see-other redirect, the response to every successful
// browser form post.
func redirect(req *restful.Request, resp *restful.Response, target string) {
	http.Redirect(resp.ResponseWriter, req.Request, target, http.StatusSeeOther)
}

// handleServiceError translates service errors to HTTP responses.
func handleServiceError(resp *restful.Response, err error) {
	statusCode := http.StatusInternalServerError
	message := "An internal error occurred"

	switch {
	case errors.Is(err, services.ErrNotFound):
		statusCode = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, services.ErrForbidden):
		statusCode = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, services.ErrValidation):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, services.ErrConflict):
		statusCode = http.StatusConflict
		message = err.Error()
	}

	_ = resp.WriteHeaderAndJson(statusCode, map[string]string{"message": message}, restful.MIME_JSON)
}

// handleFormError is the browser-side counterpart of handleServiceError.
// Not-found form posts are a graceful no-op: the client is sent back to the
// list with storage unchanged. Everything else degrades to the JSON path.
func handleFormError(req *restful.Request, resp *restful.Response, err error, backTo string) {
	if wantsHTML(req) && errors.Is(err, services.ErrNotFound) {
		redirect(req, resp, backTo)
		return
	}
	handleServiceError(resp, err)
}
