package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"secondbrain/internal/handler"
	"secondbrain/pkg/mq"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	taskHandler *handler.TaskHandler,
	habitHandler *handler.HabitHandler,
	recurringHandler *handler.RecurringHandler,
	goalHandler *handler.GoalHandler,
	activityHandler *handler.ActivityHandler,
	jwtSecret string,
	logger *zap.Logger,
	db *pgxpool.Pool,
	consumer *mq.Consumer,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(RequestLogMiddleware(logger))
	r.Use(MetricsMiddleware())

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		if consumer != nil && !consumer.IsConnected() {
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/login", authHandler.Login)

	// Protected
	api := r.Group("/api")
	api.Use(AuthMiddleware(jwtSecret))
	{
		api.GET("/tasks", taskHandler.ListTasks)
		api.POST("/tasks", taskHandler.CreateTask)
		api.GET("/tasks/:id", taskHandler.GetTask)
		api.PATCH("/tasks/:id", taskHandler.UpdateTask)
		api.DELETE("/tasks/:id", taskHandler.DeleteTask)

		api.GET("/tasks/:id/subtasks", taskHandler.ListSubtasks)
		api.POST("/tasks/:id/subtasks", taskHandler.AddSubtask)
		api.PATCH("/tasks/:id/subtasks/:subtask_id", taskHandler.UpdateSubtask)
		api.DELETE("/tasks/:id/subtasks/:subtask_id", taskHandler.DeleteSubtask)

		api.GET("/habits", habitHandler.ListHabits)
		api.POST("/habits", habitHandler.CreateHabit)
		api.GET("/habits/:id", habitHandler.GetHabit)
		api.PATCH("/habits/:id", habitHandler.UpdateHabit)
		api.DELETE("/habits/:id", habitHandler.DeleteHabit)
		api.POST("/habits/:id/log", habitHandler.LogHabit)

		api.GET("/recurring", recurringHandler.ListTemplates)
		api.POST("/recurring", recurringHandler.CreateTemplate)
		api.PATCH("/recurring/:id", recurringHandler.UpdateTemplate)
		api.DELETE("/recurring/:id", recurringHandler.DeleteTemplate)
		api.POST("/recurring/generate", recurringHandler.Generate)

		api.GET("/goals", goalHandler.ListGoals)
		api.POST("/goals", goalHandler.CreateGoal)
		api.GET("/goals/:id", goalHandler.GetGoal)
		api.PATCH("/goals/:id", goalHandler.UpdateGoal)
		api.DELETE("/goals/:id", goalHandler.DeleteGoal)
		api.POST("/goals/:id/key-results", goalHandler.UpsertKeyResult)

		api.GET("/activities", activityHandler.ListActivities)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
