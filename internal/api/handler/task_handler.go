package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/todoboard/task-tracker/internal/api/metrics"
	"github.com/todoboard/task-tracker/internal/api/middleware"
	"github.com/todoboard/task-tracker/internal/api/web"
	"github.com/todoboard/task-tracker/internal/core/domain"
	"github.com/todoboard/task-tracker/internal/core/ports"
)

const (
	msgNoResults    = "No search results."
	titleCreateTask = "New task"
	titleEditTask   = "Edit task"
	titleDeleteTask = "Delete task"
)

// TaskHandler serves the task list and the create, edit, complete and delete
// flows. Every call passes the request's actor to the service.
type TaskHandler struct {
	service  ports.TaskService
	sessions *Sessions
}

func NewTaskHandler(service ports.TaskService, sessions *Sessions) *TaskHandler {
	return &TaskHandler{service: service, sessions: sessions}
}

// Index lists open tasks, completed tasks with ?id=done, or the result of a
// search posted in the "search" field.
//
// @Summary      Task list and search
// @Tags         tasks
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        id      query     string  false  "done to list completed tasks"
// @Param        search  formData  string  false  "Matches task name or assignee name"
// @Success      200
// @Success      302
// @Router       / [get]
// @Router       / [post]
func (h *TaskHandler) Index(c echo.Context) error {
	q := ports.ListQuery{Completed: c.QueryParam("id") == "done"}
	if c.Request().Method == http.MethodPost {
		q.Search = c.FormValue("search")
	}

	list, err := h.service.ListTasks(c.Request().Context(), middleware.CurrentActor(c), q)
	if err != nil {
		return err
	}

	if list.Kind == domain.FilterSearch {
		if list.NoResults {
			metrics.SearchesTotal.WithLabelValues("miss").Inc()
			return h.sessions.redirectWith(c, "/", domain.FlashInfo, msgNoResults)
		}
		metrics.SearchesTotal.WithLabelValues("hit").Inc()
	}

	return h.sessions.render(c, http.StatusOK, web.PageIndex, &indexPage{
		Base:   web.Base{Title: list.Label},
		Search: q.Search,
		List:   list,
	})
}

// CreatePage renders an empty task form assigned to the current user.
//
// @Summary      New task form
// @Tags         tasks
// @Produce      html
// @Success      200
// @Router       /create [get]
func (h *TaskHandler) CreatePage(c echo.Context) error {
	actor := middleware.CurrentActor(c)
	return h.renderForm(c, http.StatusOK, titleCreateTask, "/create", taskFields{Charge: actor.UserID()}, nil)
}

// Create stores a new task, or does nothing when cancel was pressed.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        task_name  formData  string   true   "Task name"
// @Param        charge     formData  integer  true   "Assignee user id"
// @Param        due_date   formData  string   true   "Due date (YYYY-MM-DD)"
// @Param        completed  formData  boolean  false  "Completed"
// @Param        cancel     formData  string   false  "Present to abandon the form"
// @Success      302
// @Failure      422
// @Router       /create [post]
func (h *TaskHandler) Create(c echo.Context) error {
	var form taskForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	in := form.input()
	if !in.Cancel {
		if err := c.Validate(&form); err != nil {
			return h.formError(c, titleCreateTask, "/create", form, err)
		}
	}

	res, err := h.service.CreateTask(c.Request().Context(), middleware.CurrentActor(c), in)
	if err != nil {
		return h.formError(c, titleCreateTask, "/create", form, err)
	}
	if res.Cancelled {
		metrics.TaskOperationsCancelledTotal.WithLabelValues("create").Inc()
		return c.Redirect(http.StatusFound, "/")
	}

	metrics.TaskOperationsTotal.WithLabelValues("create").Inc()
	return h.sessions.redirectWith(c, "/", domain.FlashSuccess, fmt.Sprintf("Task %q was created.", res.Task.Name))
}

// EditPage renders the form pre-filled with the stored task.
//
// @Summary      Edit task form
// @Tags         tasks
// @Produce      html
// @Param        id  path  integer  true  "Task id"
// @Success      200
// @Failure      404
// @Router       /edit/{id} [get]
func (h *TaskHandler) EditPage(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	task, err := h.service.GetTask(c.Request().Context(), middleware.CurrentActor(c), id)
	if err != nil {
		return err
	}
	return h.renderForm(c, http.StatusOK, titleEditTask, editPath(id), fieldsFromTask(task), nil)
}

// Edit overwrites the task, or does nothing when cancel was pressed. A missing
// task is reported before the form is looked at.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        id         path      integer  true   "Task id"
// @Param        task_name  formData  string   true   "Task name"
// @Param        charge     formData  integer  true   "Assignee user id"
// @Param        due_date   formData  string   true   "Due date (YYYY-MM-DD)"
// @Param        completed  formData  boolean  false  "Completed"
// @Param        cancel     formData  string   false  "Present to abandon the form"
// @Success      302
// @Failure      404
// @Failure      422
// @Router       /edit/{id} [post]
func (h *TaskHandler) Edit(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if _, err := h.service.GetTask(c.Request().Context(), middleware.CurrentActor(c), id); err != nil {
		return err
	}

	var form taskForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	in := form.input()
	if !in.Cancel {
		if err := c.Validate(&form); err != nil {
			return h.formError(c, titleEditTask, editPath(id), form, err)
		}
	}

	res, err := h.service.EditTask(c.Request().Context(), middleware.CurrentActor(c), id, in)
	if err != nil {
		return h.formError(c, titleEditTask, editPath(id), form, err)
	}
	if res.Cancelled {
		metrics.TaskOperationsCancelledTotal.WithLabelValues("update").Inc()
		return c.Redirect(http.StatusFound, "/")
	}

	metrics.TaskOperationsTotal.WithLabelValues("update").Inc()
	return h.sessions.redirectWith(c, "/", domain.FlashSuccess, fmt.Sprintf("Task %q was updated.", res.Task.Name))
}

// Complete marks the task done and returns to the list.
//
// @Summary      Complete a task
// @Tags         tasks
// @Param        id  path  integer  true  "Task id"
// @Success      302
// @Failure      404
// @Router       /complete/{id} [get]
func (h *TaskHandler) Complete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	task, err := h.service.CompleteTask(c.Request().Context(), middleware.CurrentActor(c), id)
	if err != nil {
		return err
	}

	metrics.TaskOperationsTotal.WithLabelValues("complete").Inc()
	return h.sessions.redirectWith(c, "/", domain.FlashSuccess, fmt.Sprintf("Task %q was completed.", task.Name))
}

// DeletePage asks for confirmation.
//
// @Summary      Delete confirmation
// @Tags         tasks
// @Produce      html
// @Param        id  path  integer  true  "Task id"
// @Success      200
// @Failure      404
// @Router       /delete/{id} [get]
func (h *TaskHandler) DeletePage(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	task, err := h.service.PrepareDelete(c.Request().Context(), middleware.CurrentActor(c), id)
	if err != nil {
		return err
	}
	return h.sessions.render(c, http.StatusOK, web.PageDelete, &deletePage{
		Base: web.Base{Title: titleDeleteTask},
		Task: task,
	})
}

// Delete removes the task only when the "delete" field was submitted.
//
// @Summary      Delete a task
// @Tags         tasks
// @Accept       x-www-form-urlencoded
// @Param        id      path      integer  true   "Task id"
// @Param        delete  formData  string   false  "Present to confirm"
// @Success      302
// @Failure      404
// @Router       /delete/{id} [post]
func (h *TaskHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	params, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	res, err := h.service.DeleteTask(c.Request().Context(), middleware.CurrentActor(c), id, params.Has("delete"))
	if err != nil {
		return err
	}
	if res.Cancelled {
		metrics.TaskOperationsCancelledTotal.WithLabelValues("delete").Inc()
		return c.Redirect(http.StatusFound, "/")
	}

	metrics.TaskOperationsTotal.WithLabelValues("delete").Inc()
	return h.sessions.redirectWith(c, "/", domain.FlashSuccess, fmt.Sprintf("Task %q was deleted.", res.Task.Name))
}

// formError re-renders the task form for validation failures and passes
// anything else to the error handler.
func (h *TaskHandler) formError(c echo.Context, title, action string, form taskForm, err error) error {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	return h.renderForm(c, http.StatusUnprocessableEntity, title, action, fieldsFromForm(form), ve.Fields)
}

func (h *TaskHandler) renderForm(c echo.Context, code int, title, action string, fields taskFields, errs map[string]string) error {
	users, err := h.service.Assignees(c.Request().Context(), middleware.CurrentActor(c))
	if err != nil {
		return err
	}
	return h.sessions.render(c, code, web.PageTask, &taskPage{
		Base:   web.Base{Title: title},
		Action: action,
		Form:   fields,
		Users:  users,
		Errors: errs,
	})
}

func editPath(id int64) string {
	return "/edit/" + strconv.FormatInt(id, 10)
}
