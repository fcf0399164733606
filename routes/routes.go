package routes

import (
	"change-order-api/controllers"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"message": "Change Order API is running",
			})
		})

		// Contractor-facing submission flow
		changeOrders := v1.Group("/change-orders")
		{
			changeOrders.POST("/draft", controllers.SaveDraft)
			changeOrders.POST("", controllers.SubmitChangeOrder)
			changeOrders.GET("", controllers.GetChangeOrders)
			changeOrders.GET("/:id", controllers.GetChangeOrder)
		}

		// Internal review team
		team := v1.Group("/team")
		{
			team.GET("/queue", controllers.GetTeamQueue)
			team.PATCH("/queue/:id", controllers.UpdateTeamQueueItem)
			team.POST("/queue/:id/decision", controllers.ApplyTeamDecision)
			team.POST("/queue/:id/email-delivery", controllers.UpdateDecisionEmailDelivery)
		}
	}
}
