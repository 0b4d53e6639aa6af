package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func deleteArticle(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	var file = params.ByName("file")

	if err := ctx.db.DeleteArticle(file); err != nil {
		return err
	}

	ctx.Success("article %s has been deleted", file)
	ctx.SeeOther("/admin_user")
	return nil
}
