// ABOUTME: Recipe view controller holding form input and per-action request state
// ABOUTME: Splits each action into Submit (validate, snapshot) and Apply (record result)

package recipeview

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/markalston/recipe-scaler/internal/client"
	"github.com/markalston/recipe-scaler/internal/session"
)

// API is the subset of the backend client the controller drives
type API interface {
	SignIn(ctx context.Context, cred client.Credential) (*client.SignInResult, error)
	AddRecipe(ctx context.Context, recipe client.Recipe) (string, error)
	DeleteRecipe(ctx context.Context, name string) (string, error)
	GetRecipe(ctx context.Context, name string, childrenCount int) (*client.Recipe, error)
	CreateUser(ctx context.Context, req client.NewUserRequest) (string, error)
}

// Status is where an action's form sits in its request lifecycle
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Action identifies one of the controller's forms
type Action int

const (
	ActionSignIn Action = iota
	ActionAddRecipe
	ActionDeleteRecipe
	ActionGetRecipe
	ActionCreateUser
)

func (a Action) String() string {
	switch a {
	case ActionSignIn:
		return "sign in"
	case ActionAddRecipe:
		return "add recipe"
	case ActionDeleteRecipe:
		return "delete recipe"
	case ActionGetRecipe:
		return "get recipe"
	case ActionCreateUser:
		return "create user"
	default:
		return "unknown"
	}
}

// Privileged reports whether the action requires an admin session
func (a Action) Privileged() bool {
	return a == ActionAddRecipe || a == ActionDeleteRecipe || a == ActionCreateUser
}

// Actions lists every action
func Actions() []Action {
	return []Action{ActionSignIn, ActionAddRecipe, ActionDeleteRecipe, ActionGetRecipe, ActionCreateUser}
}

// FormState is the request state of one form. Err is set alongside
// StatusError so callers can tell validation from remote failures.
type FormState struct {
	Status  Status
	Message string
	Err     error
}

// Job performs the request captured by Submit. It touches no controller
// state, so it may run on any goroutine.
type Job func(ctx context.Context) Result

// Result is the outcome of a Job, handed back to Apply
type Result struct {
	Action   Action
	Message  string
	Recipe   *client.Recipe
	Children int
	SignIn   *client.SignInResult
	UserID   string
	Err      error
}

// Controller owns the recipe forms and their request state. Its methods
// must be called from a single goroutine.
type Controller struct {
	Forms Forms

	api    API
	store  session.Store
	logger *slog.Logger
	states map[Action]FormState

	fetched         *client.Recipe
	fetchedChildren int
}

// New creates a controller. The store is written on sign-in and cleared on
// sign-out.
func New(api API, store session.Store, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		api:    api,
		store:  store,
		logger: logger,
		states: make(map[Action]FormState),
	}
	c.Forms.AddRecipe.Kind = client.QuantityWeight
	return c
}

// State returns the current state of an action's form
func (c *Controller) State(a Action) FormState {
	return c.states[a]
}

// Fetched returns the recipe from the last successful get, or nil
func (c *Controller) Fetched() *client.Recipe {
	return c.fetched
}

// FetchedChildren returns the children count the fetched recipe was scaled
// for, or 0 when nothing is fetched
func (c *Controller) FetchedChildren() int {
	return c.fetchedChildren
}

// Submit validates the form for action and moves it to submitting. It
// returns nil when nothing should be sent: a privileged action without an
// admin session (left untouched), or input that failed local validation
// (form set to error).
func (c *Controller) Submit(a Action, s session.Session) Job {
	if a.Privileged() && !s.Normalize().IsAdmin {
		c.logger.Debug("Ignoring privileged action without admin session", "action", a.String())
		return nil
	}

	job, err := c.prepare(a)
	if err != nil {
		c.fail(a, err)
		return nil
	}

	c.states[a] = FormState{Status: StatusSubmitting}
	c.logger.Debug("Submitting", "action", a.String())
	return job
}

// Apply records a Job's result. Sign-in results are written to the session
// store here, before any navigation can depend on them.
func (c *Controller) Apply(r Result) {
	if r.Err != nil {
		c.fail(r.Action, r.Err)
		return
	}

	switch r.Action {
	case ActionSignIn:
		s := session.Session{Token: r.SignIn.Token, IsAdmin: r.SignIn.IsAdmin, UserID: r.UserID}
		if err := c.store.Set(s); err != nil {
			c.logger.Error("Saving session failed", "error", err)
			c.states[r.Action] = FormState{Status: StatusError, Message: "Failed to save session", Err: err}
			return
		}
		c.Forms.SignIn = SignInForm{}
		r.Message = fmt.Sprintf("Signed in as %s", r.UserID)
	case ActionAddRecipe:
		c.Forms.AddRecipe = AddRecipeForm{Kind: c.Forms.AddRecipe.Kind}
	case ActionDeleteRecipe:
		c.Forms.DeleteRecipe = DeleteRecipeForm{}
	case ActionGetRecipe:
		c.fetched = r.Recipe
		c.fetchedChildren = r.Children
	case ActionCreateUser:
		c.Forms.CreateUser = CreateUserForm{}
	}

	c.states[r.Action] = FormState{Status: StatusSuccess, Message: r.Message}
	c.logger.Info("Action succeeded", "action", r.Action.String())
}

// Run submits action and applies its result synchronously
func (c *Controller) Run(ctx context.Context, a Action, s session.Session) FormState {
	if job := c.Submit(a, s); job != nil {
		c.Apply(job(ctx))
	}
	return c.State(a)
}

// SignOut clears the session store and resets every form
func (c *Controller) SignOut() error {
	kind := c.Forms.AddRecipe.Kind
	c.Forms = Forms{AddRecipe: AddRecipeForm{Kind: kind}}
	c.states = make(map[Action]FormState)
	c.fetched = nil
	c.fetchedChildren = 0
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Reset returns an action's form to idle without touching its input
func (c *Controller) Reset(a Action) {
	delete(c.states, a)
}

func (c *Controller) fail(a Action, err error) {
	msg := client.Message(err)
	c.states[a] = FormState{Status: StatusError, Message: msg, Err: err}
	if a == ActionGetRecipe {
		c.fetched = nil
		c.fetchedChildren = 0
	}
	c.logger.Warn("Action failed", "action", a.String(), "error", msg)
}

// prepare validates the form for a and returns a Job over a snapshot of it
func (c *Controller) prepare(a Action) (Job, error) {
	api := c.api

	switch a {
	case ActionSignIn:
		cred := client.Credential{ID: strings.TrimSpace(c.Forms.SignIn.ID), Password: c.Forms.SignIn.Password}
		if cred.ID == "" || cred.Password == "" {
			return nil, invalid(a, "ID and password are required")
		}
		return func(ctx context.Context) Result {
			res, err := api.SignIn(ctx, cred)
			return Result{Action: a, SignIn: res, UserID: cred.ID, Err: err}
		}, nil

	case ActionAddRecipe:
		recipe, err := c.Forms.AddRecipe.Recipe()
		if err != nil {
			return nil, err
		}
		if err := recipe.Validate(); err != nil {
			return nil, err
		}
		return func(ctx context.Context) Result {
			msg, err := api.AddRecipe(ctx, recipe)
			return Result{Action: a, Message: msg, Err: err}
		}, nil

	case ActionDeleteRecipe:
		name := strings.TrimSpace(c.Forms.DeleteRecipe.Name)
		if name == "" {
			return nil, invalid(a, "Recipe name is required")
		}
		return func(ctx context.Context) Result {
			msg, err := api.DeleteRecipe(ctx, name)
			return Result{Action: a, Message: msg, Err: err}
		}, nil

	case ActionGetRecipe:
		name := strings.TrimSpace(c.Forms.GetRecipe.Name)
		if name == "" {
			return nil, invalid(a, "Recipe name is required")
		}
		children, err := client.ParseChildrenCount(c.Forms.GetRecipe.Children)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) Result {
			recipe, err := api.GetRecipe(ctx, name, children)
			return Result{Action: a, Recipe: recipe, Children: children, Err: err}
		}, nil

	case ActionCreateUser:
		req := client.NewUserRequest{
			ID:       strings.TrimSpace(c.Forms.CreateUser.ID),
			Password: c.Forms.CreateUser.Password,
			IsAdmin:  c.Forms.CreateUser.IsAdmin,
		}
		if req.ID == "" || req.Password == "" {
			return nil, invalid(a, "User ID and password are required")
		}
		return func(ctx context.Context) Result {
			msg, err := api.CreateUser(ctx, req)
			return Result{Action: a, Message: msg, Err: err}
		}, nil
	}

	return nil, fmt.Errorf("unknown action %d", a)
}

func invalid(a Action, msg string) error {
	return &client.Error{Kind: client.KindValidation, Op: a.String(), Message: msg}
}
