package handler

import (
	"strconv"
	"strings"

	"github.com/todoboard/task-tracker/internal/api/web"
	"github.com/todoboard/task-tracker/internal/core/domain"
	"github.com/todoboard/task-tracker/internal/core/ports"
)

// --- Form payloads ---

type loginForm struct {
	Email    string `form:"email"    validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Register string `form:"register"`
}

type registerForm struct {
	Email    string `form:"email"    validate:"required,email,max=254"`
	Password string `form:"password" validate:"required,max=72"`
	Name     string `form:"name"     validate:"required,max=100"`
}

// taskForm is the create/edit form. Required fields and the assignee are
// checked by the task service; the tags here only bound the input.
type taskForm struct {
	Charge    string `form:"charge"`
	TaskName  string `form:"task_name" validate:"max=200"`
	DueDate   string `form:"due_date"  validate:"omitempty,datetime=2006-01-02"`
	Completed bool   `form:"completed"`
	Cancel    string `form:"cancel"`
}

func (f taskForm) input() ports.TaskInput {
	owner, _ := strconv.ParseInt(strings.TrimSpace(f.Charge), 10, 64)
	return ports.TaskInput{
		OwnerID:   owner,
		Name:      f.TaskName,
		DueDate:   f.DueDate,
		Completed: f.Completed,
		Cancel:    f.Cancel != "",
	}
}

// --- Page data ---

type loginPage struct {
	web.Base
	Email  string
	Errors map[string]string
}

type registerPage struct {
	web.Base
	Email  string
	Name   string
	Errors map[string]string
}

type indexPage struct {
	web.Base
	Search string
	List   *ports.TaskList
}

// taskFields is what the task form shows.
type taskFields struct {
	Charge    int64
	TaskName  string
	DueDate   string
	Completed bool
}

func fieldsFromForm(f taskForm) taskFields {
	in := f.input()
	return taskFields{Charge: in.OwnerID, TaskName: f.TaskName, DueDate: f.DueDate, Completed: f.Completed}
}

func fieldsFromTask(t *domain.Task) taskFields {
	return taskFields{
		Charge:    t.OwnerID,
		TaskName:  t.Name,
		DueDate:   t.DueDate.Format(domain.DateLayout),
		Completed: t.Completed,
	}
}

type taskPage struct {
	web.Base
	Action string
	Form   taskFields
	Users  []*domain.User
	Errors map[string]string
}

type deletePage struct {
	web.Base
	Task *domain.Task
}
