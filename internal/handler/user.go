package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-directory/internal/auth"
	"github.com/iliyamo/user-directory/internal/directory"
	"github.com/iliyamo/user-directory/internal/middleware"
	"github.com/iliyamo/user-directory/internal/model"
	"github.com/iliyamo/user-directory/internal/repository"
)

const dbTimeout = 5 * time.Second

// UserHandler bundles dependencies for the /users endpoints.
type UserHandler struct {
	Dir  *directory.Directory
	Auth *auth.Authenticator
}

func NewUserHandler(d *directory.Directory, a *auth.Authenticator) *UserHandler {
	return &UserHandler{Dir: d, Auth: a}
}

// ----- DTOs -----

type createUserReq struct {
	Username    string `json:"username" form:"username"`
	Email       string `json:"email" form:"email"`
	FullName    string `json:"full_name" form:"full_name"`
	Password    string `json:"password" form:"password"`
	IsActive    *bool  `json:"is_active" form:"is_active"`
	IsSuperuser bool   `json:"is_superuser" form:"is_superuser"`
}

func (r createUserReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 50), is.Email),
		validation.Field(&r.FullName, validation.Length(0, 50)),
		validation.Field(&r.Password, validation.Required),
	)
}

type updateUserReq struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	FullName    *string `json:"full_name"`
	Password    *string `json:"password"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

func (r updateUserReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Length(1, 50)),
		validation.Field(&r.Email, validation.Length(3, 50), is.Email),
		validation.Field(&r.FullName, validation.Length(0, 50)),
	)
}

func detail(c echo.Context, code int, msg string) error {
	return c.JSON(code, echo.Map{"detail": msg})
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// ----- Handlers -----

// Init creates the default superuser. Run once when deploying a new app;
// the second run fails with the email conflict from the create path.
func (h *UserHandler) Init(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Dir.BootstrapSuperuser(ctx)
	if err != nil {
		return createError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Token performs the password login and returns a bearer token. The
// credentials arrive as form data with username and password fields.
func (h *UserHandler) Token(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	ctx, cancel := reqCtx(c)
	defer cancel()

	tok, err := h.Auth.Login(ctx, username, password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			c.Response().Header().Set("WWW-Authenticate", "Bearer")
			return detail(c, http.StatusUnauthorized, "Incorrect username or password")
		case errors.Is(err, auth.ErrInactiveUser):
			c.Response().Header().Set("WWW-Authenticate", "Bearer")
			return detail(c, http.StatusUnauthorized, "Inactive user")
		default:
			return detail(c, http.StatusInternalServerError, "login failed")
		}
	}
	return c.JSON(http.StatusOK, tok)
}

// Me returns the caller's own record, already resolved by the guard.
func (h *UserHandler) Me(c echo.Context) error {
	u, ok := middleware.UserFrom(c)
	if !ok {
		return detail(c, http.StatusUnauthorized, "Could not validate credentials")
	}
	return c.JSON(http.StatusOK, u)
}

// GetUser looks a user up by exactly one of the user_id, username or
// email query parameters.
func (h *UserHandler) GetUser(c echo.Context) error {
	var sel directory.Selector
	if s := c.QueryParam("user_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return detail(c, http.StatusNotFound, "Invalid query. Should pass in user_id or username or email")
		}
		sel.ID = &id
	} else if s := c.QueryParam("username"); s != "" {
		sel.Username = &s
	} else if s := c.QueryParam("email"); s != "" {
		sel.Email = &s
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Dir.Get(ctx, sel)
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrInvalidQuery):
			return detail(c, http.StatusNotFound, "Invalid query. Should pass in user_id or username or email")
		case errors.Is(err, repository.ErrNotFound):
			return detail(c, http.StatusNotFound, "User not found")
		default:
			return detail(c, http.StatusInternalServerError, "query failed")
		}
	}
	return c.JSON(http.StatusOK, u)
}

// GetAllUsers returns every user in store order.
func (h *UserHandler) GetAllUsers(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Dir.List(ctx)
	if err != nil {
		return detail(c, http.StatusInternalServerError, "query failed")
	}
	if users == nil {
		users = []model.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// CreateUser creates a new user record.
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid body")
	}
	if err := req.Validate(); err != nil {
		return detail(c, http.StatusBadRequest, err.Error())
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Dir.Create(ctx, directory.CreateInput{
		Username:    req.Username,
		Email:       req.Email,
		FullName:    req.FullName,
		Password:    req.Password,
		IsActive:    isActive,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		return createError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateUser applies a partial update to the user with the given id.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return detail(c, http.StatusNotFound, "User not found")
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid body")
	}
	if err := req.Validate(); err != nil {
		return detail(c, http.StatusBadRequest, err.Error())
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Dir.Update(ctx, id, directory.UpdateInput{
		Username:    req.Username,
		Email:       req.Email,
		FullName:    req.FullName,
		Password:    req.Password,
		IsActive:    req.IsActive,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return detail(c, http.StatusNotFound, "User not found")
		case errors.Is(err, repository.ErrUsernameExists):
			return detail(c, http.StatusNotFound, "User with same username already exists")
		case errors.Is(err, repository.ErrEmailExists):
			return detail(c, http.StatusNotFound, "User with same email already exists")
		default:
			return detail(c, http.StatusInternalServerError, "update failed")
		}
	}
	return c.JSON(http.StatusOK, u)
}

// DeleteUser removes the user and returns the deleted projection.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return detail(c, http.StatusNotFound, "User not found")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	du, err := h.Dir.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return detail(c, http.StatusNotFound, "User not found")
		}
		return detail(c, http.StatusInternalServerError, "delete failed")
	}
	return c.JSON(http.StatusOK, du)
}

// createError maps the create-path conflicts to the literal responses the
// API contract fixes.
func createError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return detail(c, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, repository.ErrUsernameExists):
		return detail(c, http.StatusBadRequest, "Username already registered")
	default:
		return detail(c, http.StatusInternalServerError, "create user failed")
	}
}
