package data

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/valyala/fasttemplate"
)

// Renderer produces markup. Types embedding it only need to provide Render.
type Renderer struct {
	Base
}

// Content renders an inline template. Placeholders look like {{ name }}
// and are replaced by the HTML-escaped value of Data[name].
type Content struct {
	Renderer
	Template string
	Data     map[string]interface{}
}

// NewContent creates inline content
func NewContent(tmpl string, values map[string]interface{}) *Content {
	return &Content{Template: tmpl, Data: values}
}

// Render implements HTMLRenderer
func (c *Content) Render(context.Context) (string, error) {
	t, err := fasttemplate.NewTemplate(c.Template, "{{", "}}")
	if err != nil {
		return "", fmt.Errorf("parse content template: %w", err)
	}
	return t.ExecuteFuncStringWithErr(func(w io.Writer, tag string) (int, error) {
		v, ok := c.Data[strings.TrimSpace(tag)]
		if !ok || v == nil {
			return 0, nil
		}
		return w.Write([]byte(html.EscapeString(fmt.Sprint(v))))
	})
}

// Send implements Sendable
func (c *Content) Send(ctx context.Context) (interface{}, error) {
	return c.Render(ctx)
}

// ViewOptions configures where views are loaded from
type ViewOptions struct {
	// FS holds the templates. Defaults to os.DirFS(Root).
	FS fs.FS
	// Root is the directory used when FS is nil
	Root string
	// Extension is appended to view names without one (default "html")
	Extension string
	// LayoutsDir holds layout templates (default "layouts")
	LayoutsDir string
	// Funcs are made available to every template
	Funcs template.FuncMap
}

// ViewConfig selects a view and its data
type ViewConfig struct {
	Name    string
	Layout  string
	Params  map[string]interface{}
	Context interface{}
}

// ViewData is what view and layout templates are executed with
type ViewData struct {
	Params  map[string]interface{}
	Context interface{}
	// Content holds the rendered view inside a layout
	Content template.HTML
}

// View renders a template file, optionally wrapped in a layout
type View struct {
	Renderer
	options ViewOptions
	config  ViewConfig
}

// ViewFactory returns a constructor for views sharing options
func ViewFactory(options ViewOptions) func(ViewConfig) *View {
	if options.Extension == "" {
		options.Extension = "html"
	}
	if options.LayoutsDir == "" {
		options.LayoutsDir = "layouts"
	}
	if options.FS == nil {
		root := options.Root
		if root == "" {
			root = "."
		}
		options.FS = os.DirFS(root)
	}
	return func(config ViewConfig) *View {
		return &View{options: options, config: config}
	}
}

// Normalize resolves a view name inside folder and appends the extension
// when it is missing
func Normalize(name, folder, extension string) string {
	if extension != "" && !strings.HasSuffix(name, "."+extension) {
		name += "." + extension
	}
	if folder == "" || folder == "." {
		return path.Clean(name)
	}
	return path.Join(folder, name)
}

// Render implements HTMLRenderer
func (v *View) Render(context.Context) (string, error) {
	viewData := ViewData{Params: v.config.Params, Context: v.config.Context}

	body, err := v.execute(Normalize(v.config.Name, "", v.options.Extension), viewData)
	if err != nil {
		return "", err
	}
	if v.config.Layout == "" {
		return body, nil
	}

	viewData.Content = template.HTML(body)
	return v.execute(Normalize(v.config.Layout, v.options.LayoutsDir, v.options.Extension), viewData)
}

// Send implements Sendable
func (v *View) Send(ctx context.Context) (interface{}, error) {
	return v.Render(ctx)
}

func (v *View) execute(file string, viewData ViewData) (string, error) {
	t, err := template.New(path.Base(file)).Funcs(v.options.Funcs).ParseFS(v.options.FS, file)
	if err != nil {
		return "", fmt.Errorf("load view %s: %w", file, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, viewData); err != nil {
		return "", fmt.Errorf("render view %s: %w", file, err)
	}
	return buf.String(), nil
}
