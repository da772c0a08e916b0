package posts

import (
	"context"
	"net/http"

	"github.com/beka-birhanu/quill-api/api/apierr"
	"github.com/beka-birhanu/quill-api/api/identity"
	dmn "github.com/beka-birhanu/quill-api/domain"
	"github.com/beka-birhanu/quill-api/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Controller handles post routes.
type Controller struct {
	posts i.PostService
}

// NewController creates a post Controller.
func NewController(ps i.PostService) *Controller {
	return &Controller{posts: ps}
}

// RegisterPublic registers the read-only routes for published posts.
func (c *Controller) RegisterPublic(route *gin.RouterGroup) {
	posts := route.Group("/posts")
	{
		posts.GET("", c.published)
		posts.GET("/:id", c.publishedByID)
	}
}

// RegisterProtected registers author and admin routes.
func (c *Controller) RegisterProtected(route *gin.RouterGroup) {
	posts := route.Group("/posts")
	{
		posts.POST("", c.create)
		posts.PATCH("/:id", c.update)
		posts.DELETE("/:id", c.delete)
		posts.POST("/:id/publish-request", c.requestPublish)
	}

	route.GET("/users/me/posts", c.mine)

	admin := route.Group("/admin/posts")
	{
		admin.GET("/requests", c.publishRequests)
		admin.POST("/:id/publish", c.publish)
	}
}

func (c *Controller) create(ctx *gin.Context) {
	var request CreateRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		apierr.BadRequest(ctx, err.Error())
		return
	}

	post, err := c.posts.Create(ctx.Request.Context(), identity.MustUserID(ctx), request.Subject, request.Body)
	if err != nil {
		apierr.Abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, newPostResponse(post))
}

func (c *Controller) update(ctx *gin.Context) {
	postID, ok := pathID(ctx)
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

	post, err := c.posts.Update(ctx.Request.Context(), identity.MustUserID(ctx), postID, request.Subject, request.Body)
	if err != nil {
		apierr.Abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newPostResponse(post))
}

func (c *Controller) delete(ctx *gin.Context) {
	postID, ok := pathID(ctx)
	if !ok {
		return
	}

	if err := c.posts.Delete(ctx.Request.Context(), identity.MustUserID(ctx), postID); err != nil {
		apierr.Abort(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (c *Controller) requestPublish(ctx *gin.Context) {
	c.transition(ctx, c.posts.RequestPublish)
}

func (c *Controller) publish(ctx *gin.Context) {
	c.transition(ctx, c.posts.Publish)
}

func (c *Controller) transition(ctx *gin.Context, step func(context.Context, uuid.UUID, uuid.UUID) (*dmn.Post, error)) {
	postID, ok := pathID(ctx)
	if !ok {
		return
	}

	post, err := step(ctx.Request.Context(), identity.MustUserID(ctx), postID)
	if err != nil {
		apierr.Abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newPostResponse(post))
}

func (c *Controller) mine(ctx *gin.Context) {
	posts, err := c.posts.Mine(ctx.Request.Context(), identity.MustUserID(ctx))
	if err != nil {
		apierr.Abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newPostResponses(posts))
}

func (c *Controller) publishRequests(ctx *gin.Context) {
	posts, err := c.posts.PublishRequests(ctx.Request.Context(), identity.MustUserID(ctx))
	if err != nil {
		apierr.Abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newPostResponses(posts))
}

func (c *Controller) published(ctx *gin.Context) {
	posts, err := c.posts.Published(ctx.Request.Context())
	if err != nil {
		apierr.Abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newPostResponses(posts))
}

func (c *Controller) publishedByID(ctx *gin.Context) {
	postID, ok := pathID(ctx)
	if !ok {
		return
	}

	post, err := c.posts.PublishedByID(ctx.Request.Context(), postID)
	if err != nil {
		apierr.Abort(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newPostResponse(post))
}

// pathID parses the :id parameter, replying 400 when it is not a UUID.
func pathID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		apierr.BadRequest(ctx, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
