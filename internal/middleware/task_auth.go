package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "github.com/spge/groundcheck/internal/errors"
	"github.com/spge/groundcheck/internal/groundcheck"
)

// ContextKeyTask holds the *groundcheck.Task loaded by RequireTask.
const ContextKeyTask = "task"

// TaskFinder loads a task by id. It returns an error wrapping notFound when
// the task does not exist.
type TaskFinder interface {
	Get(id string) (*groundcheck.Task, error)
}

// RequireTask loads the task named by the :id parameter and stores it in the
// context. Unknown ids get a 404.
func RequireTask(finder TaskFinder, notFound error) gin.HandlerFunc {
	return func(c *gin.Context) {
		task, err := finder.Get(c.Param("id"))
		if err != nil {
			if errors.Is(err, notFound) {
				apierrors.NotFound(c, "Task not found")
			} else {
				apierrors.InternalError(c, "Failed to load task")
			}
			c.Abort()
			return
		}

		c.Set(ContextKeyTask, task)
		c.Next()
	}
}

// GetTask retrieves the task stored by RequireTask
func GetTask(c *gin.Context) (*groundcheck.Task, bool) {
	v, exists := c.Get(ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := v.(*groundcheck.Task)
	return task, ok
}
