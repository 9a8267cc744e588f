package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/washline/washline-api/config"
	"github.com/washline/washline-api/models"
)

// Requirement is a route's declared role requirement
type Requirement string

const (
	RequireNone     Requirement = "none" // any authenticated active user
	RequireCustomer Requirement = models.RoleCustomer
	RequireStaff    Requirement = models.RoleStaff
	RequireAdmin    Requirement = models.RoleAdmin
)

// Access-control errors. Roles are exact-match buckets: there is no hierarchy
// and no elevation, an admin does not pass a staff-only gate.
var (
	ErrUnauthenticated    = &AccessError{Code: "UNAUTHORIZED", Message: "Authentication required"}
	ErrAccountDeactivated = &AccessError{Code: "ACCOUNT_DEACTIVATED", Message: "This account has been deactivated"}
	ErrRoleMismatch       = &AccessError{Code: "FORBIDDEN", Message: "This area is not available for your role"}
)

// AccessError represents an access-control failure
type AccessError struct {
	Code    string
	Message string
}

func (e *AccessError) Error() string {
	return e.Message
}

// Authorize decides whether a caller may access a route with the given
// requirement. An empty role means the caller is unauthenticated.
func Authorize(role string, isActive bool, requirement Requirement) error {
	if role == "" {
		return ErrUnauthenticated
	}
	if !isActive {
		return ErrAccountDeactivated
	}
	if requirement == RequireNone {
		return nil
	}
	if role != string(requirement) {
		return ErrRoleMismatch
	}
	return nil
}

// RequireRole loads the caller's persisted user record, checks it against the
// route requirement and stores the user in the context for handlers. Role
// mismatches answer with the caller's role-appropriate home path in
// redirect_to so the client can route the user somewhere useful instead of
// showing a raw error.
func RequireRole(requirement Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth0ID, err := GetUserID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    ErrUnauthenticated.Code,
					"message": ErrUnauthenticated.Message,
				},
			})
			c.Abort()
			return
		}

		db := config.GetDB()
		var user models.User
		if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "USER_NOT_FOUND",
						"message": "User profile not found. Please create a profile first.",
					},
				})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "DATABASE_ERROR",
						"message": "Failed to load user profile",
					},
				})
			}
			c.Abort()
			return
		}

		if authErr := Authorize(user.Role, user.Active, requirement); authErr != nil {
			accessErr := authErr.(*AccessError)
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    accessErr.Code,
					"message": accessErr.Message,
				},
				"redirect_to": models.HomePath(user.Role),
			})
			c.Abort()
			return
		}

		c.Set("current_user", &user)
		c.Next()
	}
}

// CurrentUser returns the user record stored by RequireRole
func CurrentUser(c *gin.Context) (*models.User, error) {
	value, exists := c.Get("current_user")
	if !exists {
		return nil, &AuthError{Code: "MISSING_USER", Message: "User not found in context"}
	}

	user, ok := value.(*models.User)
	if !ok {
		return nil, &AuthError{Code: "INVALID_USER", Message: "User in context has unexpected type"}
	}

	return user, nil
}
