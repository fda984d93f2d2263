package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"
)

//go:embed templates static
var assets embed.FS

// viewData is passed to page templates; render adds CurrentUser and Flashes
type viewData map[string]interface{}

type views struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"since":  since,
	"avatar": avatarURL,
}

// parseViews parses every page together with the shared layout and partials
func parseViews() (*views, error) {
	pages, err := fs.Glob(assets, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	v := &views{pages: make(map[string]*template.Template, len(pages))}
	for _, p := range pages {
		name := path.Base(p)
		t, err := template.New(name).Funcs(funcs).ParseFS(assets, "templates/layout.html", "templates/partials/*.html", p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		v.pages[name] = t
	}

	return v, nil
}

func (v *views) execute(w io.Writer, page string, data viewData) error {
	t, ok := v.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// render writes page with status, popping flash messages queued for this browser
func (h *handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data viewData) {
	if data == nil {
		data = viewData{}
	}

	data["CurrentUser"] = currentUser(r.Context())
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = map[string]string{}
	}

	flashes, err := h.sessions.Flashes(w, r)
	if err != nil {
		h.logger.Errorf("popping flashes: %v", err)
	}
	data["Flashes"] = flashes

	var buf bytes.Buffer
	if err := h.views.execute(&buf, page, data); err != nil {
		h.internalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Errorf("writing rendered page to ResponseWriter: %v", err)
	}
}

// since formats the time passed since t the way activity feeds do ("3 hours ago")
func since(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	case d < 30*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// avatarURL resolves stored avatar value: absolute URLs and paths are used as is,
// bare file names point to bundled images
func avatarURL(avatar string) string {
	switch {
	case avatar == "":
		return "/static/images/avatar.svg"
	case strings.HasPrefix(avatar, "http://"), strings.HasPrefix(avatar, "https://"), strings.HasPrefix(avatar, "/"):
		return avatar
	default:
		return "/static/images/" + avatar
	}
}
