package drafts

import (
	"net/http"

	"github.com/beka-birhanu/quill-api/api/apierr"
	"github.com/beka-birhanu/quill-api/api/identity"
	"github.com/beka-birhanu/quill-api/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Controller handles draft routes. Every route needs authentication.
type Controller struct {
	drafts i.DraftService
}

// NewController creates a draft Controller.
func NewController(ds i.DraftService) *Controller {
	return &Controller{drafts: ds}
}

// RegisterPublic registers nothing; drafts are private.
func (c *Controller) RegisterPublic(*gin.RouterGroup) {}

// RegisterProtected registers the draft routes.
func (c *Controller) RegisterProtected(route *gin.RouterGroup) {
	drafts := route.Group("/drafts")
	{
		drafts.POST("", c.create)
		drafts.GET("", c.list)
		drafts.GET("/:id", c.get)
		drafts.PATCH("/:id", c.update)
		drafts.DELETE("/:id", c.delete)
	}
}

func (c *Controller) create(ctx *gin.Context) {
	var request CreateRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		apierr.BadRequest(ctx, err.Error())
		return
	}

	draft, err := c.drafts.Create(ctx.Request.Context(), identity.MustUserID(ctx), request.Subject, request.Body, request.PostID)
	if err != nil {
		apierr.Abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, newDraftResponse(draft))
}

func (c *Controller) list(ctx *gin.Context) {
	drafts, err := c.drafts.List(ctx.Request.Context(), identity.MustUserID(ctx))
	if err != nil {
		apierr.Abort(ctx, err)
		return
	}

	out := make([]DraftResponse, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, newDraftResponse(d))
	}
	ctx.JSON(http.StatusOK, out)
}

func (c *Controller) get(ctx *gin.Context) {
	draftID, ok := pathID(ctx)
	if !ok {
		return
	}

	draft, err := c.drafts.Get(ctx.Request.Context(), identity.MustUserID(ctx), draftID)
	if err != nil {
		apierr.Abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newDraftResponse(draft))
}

func (c *Controller) update(ctx *gin.Context) {
	draftID, ok := pathID(ctx)
	if !ok {
		return
	}

	var request UpdateRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		apierr.BadRequest(ctx, err.Error())
		return
	}
	if request.Subject == nil && request.Body == nil {
		apierr.BadRequest(ctx, "nothing to update")
		return
	}

	draft, err := c.drafts.Update(ctx.Request.Context(), identity.MustUserID(ctx), draftID, request.Subject, request.Body)
	if err != nil {
		apierr.Abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newDraftResponse(draft))
}

func (c *Controller) delete(ctx *gin.Context) {
	draftID, ok := pathID(ctx)
	if !ok {
		return
	}

	if err := c.drafts.Delete(ctx.Request.Context(), identity.MustUserID(ctx), draftID); err != nil {
		apierr.Abort(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func pathID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		apierr.BadRequest(ctx, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
