package weaver

import (
	"net/http"

	"github.com/toyz/weaver/pkg/data"
)

// SendResponse writes a handler result. Redirectors only redirect;
// renderers and other sendables emit beforesend and aftersend around the
// write; anything else is sent with status 200.
func SendResponse(ctx RequestContext, result interface{}) error {
	res := ctx.Response()
	if res.Written() {
		return nil
	}

	switch v := result.(type) {
	case data.Redirector:
		return res.Redirect(v.HTTPCode(), v.Location())

	case data.HTMLRenderer:
		html, err := v.Render(ctx.Context())
		if err != nil {
			return err
		}
		v.Emitter().Emit(data.EventBeforeSend)
		if err := res.HTML(v.HTTPCode(), html); err != nil {
			return err
		}
		v.Emitter().Emit(data.EventAfterSend)
		return nil

	case data.Sendable:
		body, err := v.Send(ctx.Context())
		if err != nil {
			return err
		}
		v.Emitter().Emit(data.EventBeforeSend)
		if err := writeBody(res, v.HTTPCode(), body); err != nil {
			return err
		}
		v.Emitter().Emit(data.EventAfterSend)
		return nil
	}

	return writeBody(res, http.StatusOK, result)
}

func writeBody(res ResponseInterface, code int, body interface{}) error {
	switch b := body.(type) {
	case nil:
		return res.Blob(code, "", nil)
	case string:
		return res.String(code, b)
	case []byte:
		return res.Blob(code, "application/octet-stream", b)
	default:
		return res.JSON(code, b)
	}
}
