package data

import (
	"context"
	"net/http"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitter(t *testing.T) {
	a := NewArtifact("x")
	var events []Event
	a.On(EventBeforeSend, func() { events = append(events, EventBeforeSend) })
	a.On(EventAfterSend, func() { events = append(events, EventAfterSend) })

	a.Emitter().Emit(EventBeforeSend)
	a.Emitter().Emit(EventAfterSend)
	assert.Equal(t, []Event{EventBeforeSend, EventAfterSend}, events)
}

func TestArtifact(t *testing.T) {
	a := NewArtifact(map[string]int{"id": 1}, "created").WithCode(http.StatusCreated)
	assert.Equal(t, http.StatusCreated, a.HTTPCode())

	body, err := a.Send(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"message": "created", "data": map[string]int{"id": 1}}, body)

	assert.Equal(t, http.StatusOK, NewArtifact(nil).HTTPCode())
}

func TestResponseHelpers(t *testing.T) {
	assert.Equal(t, http.StatusOK, OK("a").HTTPCode())
	assert.Equal(t, http.StatusCreated, Created("a").HTTPCode())
	assert.Equal(t, http.StatusAccepted, Accepted("a").HTTPCode())

	r := NoContent()
	assert.Equal(t, http.StatusNoContent, r.HTTPCode())
	body, err := r.Send(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, body)
}

func TestRedirection(t *testing.T) {
	r := Redirect("/login")
	assert.Equal(t, http.StatusFound, r.HTTPCode())
	assert.Equal(t, "/login", r.Location())

	var _ Redirector = r

	moved, err := RedirectWithCode("/new", http.StatusMovedPermanently)
	require.NoError(t, err)
	assert.Equal(t, http.StatusMovedPermanently, moved.HTTPCode())

	_, err = RedirectWithCode("/new", http.StatusOK)
	assert.Error(t, err)
}

func TestContent(t *testing.T) {
	c := NewContent("<h1>Hello {{ name }}</h1>{{missing}}", map[string]interface{}{"name": "<Paul>"})
	out, err := c.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hello &lt;Paul&gt;</h1>", out)

	var _ HTMLRenderer = c
}

func TestView(t *testing.T) {
	fsys := fstest.MapFS{
		"users/show.html":     {Data: []byte(`<p>{{ .Params.name }}</p>`)},
		"layouts/main.html":   {Data: []byte(`<main>{{ .Content }}</main>`)},
		"layouts/broken.html": {Data: []byte(`{{ .Nope }`)},
	}
	newView := ViewFactory(ViewOptions{FS: fsys})

	out, err := newView(ViewConfig{Name: "users/show", Params: map[string]interface{}{"name": "<b>"}}).Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<p>&lt;b&gt;</p>", out)

	out, err = newView(ViewConfig{Name: "users/show", Layout: "main", Params: map[string]interface{}{"name": "ann"}}).Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<main><p>ann</p></main>", out)

	_, err = newView(ViewConfig{Name: "users/missing"}).Render(context.Background())
	assert.Error(t, err)

	_, err = newView(ViewConfig{Name: "users/show", Layout: "broken"}).Render(context.Background())
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "views/a.html", Normalize("a", "views", "html"))
	assert.Equal(t, "views/a.html", Normalize("a.html", "views", "html"))
	assert.Equal(t, "a.tmpl", Normalize("a", "", "tmpl"))
}
