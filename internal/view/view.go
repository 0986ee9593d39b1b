// Package view はHTMLテンプレートの描画を提供する。
// 全ページは共通レイアウトの上に描画され、認証状態に応じて
// ナビゲーションが切り替わる。テンプレートはバイナリに埋め込まれる。
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/hitoshi/eventhive/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page は全ページ共通の描画データ。
// Dataにはページ固有のビューモデルを格納する。
type Page struct {
	Title        string
	User         *model.User
	CSRFToken    string
	ErrorMessage string
	Data         any
}

// Renderer はページテンプレートの描画を行う。
// ページごとにレイアウトと合成したテンプレートを保持する。
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewRenderer は埋め込みテンプレートをパースしてRendererを生成する。
// テンプレートに構文エラーがある場合は起動時に失敗させる。
func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	entries, err := fs.ReadDir(templatesFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded templates: %w", err)
	}

	templates := make(map[string]*template.Template)
	for _, entry := range entries {
		name := entry.Name()
		if name == "layout.html" {
			continue
		}

		tmpl, err := template.New("layout.html").ParseFS(templatesFS,
			"templates/layout.html",
			path.Join("templates", name),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}

		pageName := strings.TrimSuffix(name, ".html")
		templates[pageName] = tmpl
	}

	return &Renderer{
		templates: templates,
		logger:    logger,
	}, nil
}

// Render は指定ページをレイアウト込みで描画する。
// テンプレート実行エラー時に中途半端なHTMLを返さないよう、
// 一度バッファに書き出してからレスポンスに流す。
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data Page) {
	tmpl, ok := r.templates[page]
	if !ok {
		r.logger.Error("unknown template", slog.String("page", page))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		r.logger.Error("template execution failed",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// RenderError はエラーページを描画する。
// APIErrorの場合はメッセージと対処方法をそのまま表示し、
// それ以外は汎用メッセージに丸める。
func (r *Renderer) RenderError(w http.ResponseWriter, status int, user *model.User, err error) {
	data := ErrorData{
		Message: "Something went wrong. Please try again.",
	}
	if apiErr, ok := err.(*model.APIError); ok {
		data.Message = apiErr.Message
		data.Action = apiErr.Action
	}

	r.Render(w, status, "error", Page{
		Title: "Error",
		User:  user,
		Data:  data,
	})
}
