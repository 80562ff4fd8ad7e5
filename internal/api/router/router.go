package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/claimstack/claimgraph/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "claimgraph-api",
		})
	})

	pipelineHandler := handler.NewPipelineHandler(deps)

	v1 := r.Group("/api/v1")
	{
		pipelines := v1.Group("/pipelines")
		{
			// POST /api/v1/pipelines/:pipeline_id/infer-dependencies
			pipelines.POST("/:pipeline_id/infer-dependencies", pipelineHandler.InferDependencies)

			// POST /api/v1/pipelines/:pipeline_id/process
			pipelines.POST("/:pipeline_id/process", pipelineHandler.ProcessPipeline)
		}

		jobs := v1.Group("/jobs")
		{
			// GET /api/v1/jobs/:job_id/status
			jobs.GET("/:job_id/status", pipelineHandler.GetJobStatus)
		}

		queues := v1.Group("/queues")
		{
			// GET /api/v1/queues/stats
			queues.GET("/stats", pipelineHandler.GetQueueStats)
		}
	}

	return r
}
