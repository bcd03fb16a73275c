package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/quillboard/quill-backend/internal/handler"
	"github.com/quillboard/quill-backend/internal/middleware"
	"github.com/quillboard/quill-backend/internal/repository"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	postHandler *handler.PostHandler,
	commentHandler *handler.CommentHandler,
	voteHandler *handler.VoteHandler,
	tagHandler *handler.TagHandler,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	tokens repository.TokenRepository,
) {
	api := router.Group("/api/v1")

	required := middleware.TokenAuth(tokens)
	optional := middleware.OptionalTokenAuth(tokens)

	// Auth
	auth := api.Group("/auth")
	auth.POST("/social/:provider", authHandler.SocialLogin)
	auth.POST("/confirm-email", authHandler.ConfirmEmail)
	auth.GET("/me", required, authHandler.Me)

	// Posts. Reads and creation accept anonymous callers; the token
	// only enriches responses (rated) or attributes authorship.
	posts := api.Group("/posts")
	{
		posts.GET("", optional, postHandler.ListPosts)
		posts.POST("", optional, postHandler.CreatePost)
		posts.GET("/:id", optional, postHandler.GetPost)
		posts.PUT("/:id", required, postHandler.UpdatePost)
		posts.DELETE("/:id", required, postHandler.DeletePost)
		posts.GET("/:id/versions", required, postHandler.ListVersions)

		posts.POST("/:id/rate", required, voteHandler.Rate)

		posts.GET("/:id/comments", commentHandler.ListComments)
		posts.POST("/:id/comments", optional, commentHandler.CreateComment)
	}

	// Comments addressed directly
	comments := api.Group("/comments")
	{
		comments.PUT("/:comment_id", required, commentHandler.UpdateComment)
		comments.DELETE("/:comment_id", required, commentHandler.DeleteComment)
		comments.GET("/:comment_id/versions", required, commentHandler.ListVersions)
	}

	// Tags
	tags := api.Group("/tags")
	{
		tags.GET("", tagHandler.ListTags)
		tags.GET("/:id", tagHandler.GetTag)
		tags.POST("", required, tagHandler.CreateTag)
	}

	// Users
	users := api.Group("/users")
	{
		users.GET("", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUser)
	}

	// Own profile
	api.GET("/user_profile", required, userHandler.GetProfile)
	api.PUT("/user_profile", required, userHandler.UpdateProfile)
}
