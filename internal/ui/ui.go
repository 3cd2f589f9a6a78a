package ui

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"go.uber.org/zap"

	"github.com/varsilias/chat-relay/internal/session"
)

//go:embed templates/*.html
var templatesFS embed.FS

type UI struct {
	log      *zap.SugaredLogger
	index    []byte
	tpl      *template.Template
	sessions *session.Store
	md       goldmark.Markdown
	policy   *bluemonday.Policy
}

func New(log *zap.SugaredLogger, s *session.Store) (*UI, error) {
	index, err := templatesFS.ReadFile("templates/index.html")
	if err != nil {
		return nil, err
	}
	t, err := template.ParseFS(templatesFS, "templates/history.html")
	if err != nil {
		return nil, err
	}

	// without WithUnsafe goldmark drops raw HTML from model output
	md := goldmark.New(
		goldmark.WithExtensions(
			highlighting.NewHighlighting(
				highlighting.WithStyle("dracula"),
				highlighting.WithFormatOptions(
					chromahtml.WithLineNumbers(false),
				),
			),
		),
	)

	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("code", "pre", "span")
	p.AllowAttrs("style").OnElements("span", "pre")

	return &UI{
		log:      log,
		index:    index,
		tpl:      t,
		sessions: s,
		md:       md,
		policy:   p,
	}, nil
}

type MsgView struct {
	Role string
	HTML template.HTML
	At   string
}

func (u *UI) mdHTML(src string) template.HTML {
	var buf bytes.Buffer
	if err := u.md.Convert([]byte(src), &buf); err != nil {
		u.log.Warnw("markdown convert", "err", err)
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(u.policy.SanitizeBytes(buf.Bytes()))
}

func (u *UI) render(w http.ResponseWriter, name string, data any, status int) {
	var buf bytes.Buffer
	if err := u.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		u.log.Errorw("template execute", "template", name, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
