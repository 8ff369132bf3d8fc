package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ssnnd0/Saxon-Scout/api/models"
	"github.com/ssnnd0/Saxon-Scout/api/transport"
	"github.com/ssnnd0/Saxon-Scout/logging"
	"github.com/ssnnd0/Saxon-Scout/storage"
)

type AuthController struct {
	usersStorage   storage.UserStorage
	invitesStorage storage.InviteStorage
	jwtSecret      string
	tokenTTL       time.Duration
}

func NewAuthController(users storage.UserStorage, invites storage.InviteStorage, jwtSecret string, tokenTTL time.Duration) *AuthController {
	return &AuthController{
		usersStorage:   users,
		invitesStorage: invites,
		jwtSecret:      jwtSecret,
		tokenTTL:       tokenTTL,
	}
}

func (c *AuthController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/auth")

	group.POST("/login", c.login)
	group.POST("/register", c.register)

	authed := engine.Group("/api/auth", transport.AuthMiddleware(c.jwtSecret, c.usersStorage))
	authed.GET("/status", c.status)
	authed.POST("/logout", c.logout)
}

// login godoc
// @Summary Authenticate a user and return a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 401 {object} models.ErrorResponse "Invalid credentials"
// @Router /api/auth/login [post]
func (c *AuthController) login(g *gin.Context) {
	var req models.LoginRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "username and password are required"})
		return
	}

	user, err := c.usersStorage.FindByUsername(g.Request.Context(), req.Username)
	if err != nil {
		// Same response for unknown user and bad password.
		g.JSON(http.StatusUnauthorized, &models.ErrorResponse{Error: "invalid credentials"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		logging.Log.Warnf("AUTH: failed login for %s", req.Username)
		g.JSON(http.StatusUnauthorized, &models.ErrorResponse{Error: "invalid credentials"})
		return
	}

	user.LastLogin = time.Now().UTC()
	if err := c.usersStorage.Update(g.Request.Context(), user); err != nil {
		logging.Log.Errorf("AUTH: failed to record login time for %s: %v", user.Username, err)
	}

	token, err := transport.SignToken(c.jwtSecret, c.tokenTTL, user)
	if err != nil {
		logging.Log.Errorf("AUTH: failed to sign token: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create token"})
		return
	}

	logging.Log.Infof("AUTH: %s logged in", user.Username)
	g.JSON(http.StatusOK, &models.LoginResponse{
		Token: token,
		User:  models.TransformUserFromStorage(user),
	})
}

// register godoc
// @Summary Create a scout account from an invite code
// @Tags auth
// @Accept json
// @Produce json
// @Param registration body models.RegisterRequest true "Registration"
// @Success 200 {object} models.LoginResponse
// @Failure 409 {object} models.ErrorResponse "Code invalid or already used"
// @Router /api/auth/register [post]
func (c *AuthController) register(g *gin.Context) {
	var req models.RegisterRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid registration data"})
		return
	}

	invite, err := c.invitesStorage.Get(g.Request.Context(), req.Code)
	if err != nil || invite.Used {
		g.JSON(http.StatusConflict, &models.ErrorResponse{Error: "invite code not valid or already used"})
		return
	}

	if _, err := c.usersStorage.FindByUsername(g.Request.Context(), req.Username); err == nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "user already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create user"})
		return
	}

	user := &storage.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         invite.Role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := c.usersStorage.Create(g.Request.Context(), user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "user already exists"})
			return
		}
		logging.Log.Errorf("AUTH: failed to create user from invite: %v", err)
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create user"})
		return
	}

	if err := c.invitesStorage.MarkUsed(g.Request.Context(), invite.Code); err != nil {
		logging.Log.Errorf("AUTH: failed to mark invite %s used: %v", invite.Code, err)
	}

	token, err := transport.SignToken(c.jwtSecret, c.tokenTTL, user)
	if err != nil {
		g.JSON(http.StatusInternalServerError, &models.ErrorResponse{Error: "could not create token"})
		return
	}

	logging.Log.Infof("AUTH: registered %s with invite %s", user.Username, invite.Code)
	g.JSON(http.StatusOK, &models.LoginResponse{
		Token: token,
		User:  models.TransformUserFromStorage(user),
	})
}

// status godoc
// @Summary Return the authenticated user
// @Tags auth
// @Produce json
// @Success 200 {object} models.UserResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/auth/status [get]
func (c *AuthController) status(g *gin.Context) {
	user := transport.CurrentUser(g)
	g.JSON(http.StatusOK, models.TransformUserFromStorage(user))
}

// logout is client-side token disposal; the server just acknowledges.
func (c *AuthController) logout(g *gin.Context) {
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "Logout successful"})
}
