package controllers

import (
	"net/http"
	"time"

	"blog-restful/apperrors"
	"blog-restful/auth"
	"blog-restful/models"
	"blog-restful/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
)

// UserController exposes registration, login and token introspection.
type UserController struct {
	userService services.UserService
}

// NewUserController creates a UserController instance
func NewUserController(userService services.UserService) *UserController {
	return &UserController{userService: userService}
}

// UserResponse defines the response structure of user information
type UserResponse struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
}

// LoginResponse is returned on successful login; the token is also set as an
// HttpOnly cookie.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func mapModelToUserResponse(user *models.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		IsAdmin:   user.IsAdmin,
	}
}

// --- go-restful Route Definitions ---

// RegisterRoutes sets up the user-related routes for a go-restful WebService.
func (ctl *UserController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/users").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)

	ws.Route(ws.POST("/register").To(ctl.registerHandler).
		Doc("Register a new user").
		Metadata(restfulspec.KeyOpenAPITags, []string{"users"}).
		Reads(services.RegisterInput{}).
		Returns(http.StatusCreated, "User created successfully", UserResponse{}).
		Returns(http.StatusBadRequest, "Missing required fields", apperrors.Error{}).
		Returns(http.StatusUnprocessableEntity, "Validation failure", apperrors.Error{}).
		Returns(http.StatusConflict, "Email already registered", apperrors.Error{}))

	ws.Route(ws.POST("/login").To(ctl.loginHandler).
		Doc("Log in with email and password").
		Metadata(restfulspec.KeyOpenAPITags, []string{"users"}).
		Reads(services.LoginInput{}).
		Returns(http.StatusOK, "Logged in, token cookie set", LoginResponse{}).
		Returns(http.StatusUnauthorized, "Invalid credentials", apperrors.Error{}))

	ws.Route(ws.GET("/auth").To(ctl.authHandler).
		Doc("Validate the auth token and return the current user").
		Metadata(restfulspec.KeyOpenAPITags, []string{"users"}).
		Returns(http.StatusOK, "Current user context", UserResponse{}).
		Returns(http.StatusUnauthorized, "Missing or invalid token", apperrors.Error{}))
}

// --- go-restful Handler Functions ---

// registerHandler (Handles POST /users/register)
func (ctl *UserController) registerHandler(request *restful.Request, response *restful.Response) {
	input := new(services.RegisterInput)
	if err := request.ReadEntity(input); err != nil {
		writeAppError(response, apperrors.BadRequest("Invalid request body: "+err.Error()))
		return
	}

	user, err := ctl.userService.Register(input)
	if err != nil {
		writeAppError(response, err)
		return
	}

	_ = response.WriteHeaderAndJson(http.StatusCreated, mapModelToUserResponse(user), restful.MIME_JSON)
}

// loginHandler (Handles POST /users/login)
func (ctl *UserController) loginHandler(request *restful.Request, response *restful.Response) {
	input := new(services.LoginInput)
	if err := request.ReadEntity(input); err != nil {
		writeAppError(response, apperrors.BadRequest("Invalid request body: "+err.Error()))
		return
	}

	token, user, err := ctl.userService.Login(input)
	if err != nil {
		writeAppError(response, err)
		return
	}

	http.SetCookie(response.ResponseWriter, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	_ = response.WriteHeaderAndJson(http.StatusOK, LoginResponse{
		Token: token,
		User:  mapModelToUserResponse(user),
	}, restful.MIME_JSON)
}

// authHandler (Handles GET /users/auth)
func (ctl *UserController) authHandler(request *restful.Request, response *restful.Response) {
	token, err := auth.TokenFromRequest(request)
	if err != nil {
		writeAppError(response, apperrors.Unauthorized(err.Error()))
		return
	}

	user, err := ctl.userService.Authenticate(token)
	if err != nil {
		writeAppError(response, err)
		return
	}

	_ = response.WriteHeaderAndJson(http.StatusOK, mapModelToUserResponse(user), restful.MIME_JSON)
}

// --- Utility Functions ---

// writeAppError serializes an application error as {statusCode, messages}.
// Unknown errors are reported as a generic internal error so storage details
// never reach the client.
func writeAppError(response *restful.Response, err error) {
	appErr := apperrors.AsError(err)
	_ = response.WriteHeaderAndJson(appErr.StatusCode, appErr, restful.MIME_JSON)
}
