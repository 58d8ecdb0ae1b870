// Package pages serves the ordering page, its form actions and the JSON
// API over the same session state.
package pages

import (
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"orderdesk/cart"
	"orderdesk/search"
	"orderdesk/session"
	"orderdesk/summary"
	"orderdesk/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const flashCookie = "orderdesk_flash"

var errBadRequest = errors.New("malformed request body")

type Options struct {
	PDF    summary.PDFOptions
	QRSize int
}

type Server struct {
	manager   *session.Manager
	formatter *summary.Formatter
	opts      Options
	logger    *zap.Logger
	page      *template.Template
}

func NewServer(m *session.Manager, f *summary.Formatter, opts Options, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.QRSize <= 0 {
		opts.QRSize = 256
	}
	page, err := template.New("index.html").Funcs(funcs).ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &Server{manager: m, formatter: f, opts: opts, logger: logger, page: page}, nil
}

// Static returns the embedded stylesheet and script.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var quantityErr *cart.InvalidQuantityError
	var notFoundErr *cart.ProductNotFoundError
	switch {
	case errors.As(err, &quantityErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &notFoundErr):
		return http.StatusConflict
	case errors.Is(err, session.ErrUnknownProduct):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrEmptyProductID), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail answers a failed request. JSON callers get the error body; form
// posts of user mistakes go back to the page with the error as a flash.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		s.logger.Debug("request rejected", zap.String("path", r.URL.Path), zap.Error(err))
	}

	if utils.WantsJSON(r) {
		msg := err.Error()
		if code == http.StatusInternalServerError {
			msg = http.StatusText(code)
		}
		body := utils.M{"error": msg}
		var notFoundErr *cart.ProductNotFoundError
		if errors.As(err, &notFoundErr) {
			body["productId"] = notFoundErr.ProductID
		}
		utils.RespondWithJSON(w, code, body)
		return
	}
	if code == http.StatusInternalServerError {
		http.Error(w, http.StatusText(code), code)
		return
	}
	s.backToPage(w, r, "error:"+err.Error())
}

// backToPage redirects a form post to the page it came from, keeping the
// search and category, with an optional flash message for the next render.
func (s *Server) backToPage(w http.ResponseWriter, r *http.Request, flash string) {
	if flash != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookie,
			Value:    url.QueryEscape(flash),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	opts := utils.ParseBrowseOptions(r, search.AllCategories)
	http.Redirect(w, r, "/"+opts.Query(search.AllCategories), http.StatusSeeOther)
}

type flash struct {
	Text  string
	Error bool
}

// takeFlash reads and expires the flash cookie.
func takeFlash(w http.ResponseWriter, r *http.Request) *flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1, Expires: time.Unix(0, 0)})
	text, err := url.QueryUnescape(c.Value)
	if err != nil || text == "" {
		return nil
	}
	if msg, ok := strings.CutPrefix(text, "error:"); ok {
		return &flash{Text: msg, Error: true}
	}
	return &flash{Text: text}
}
