package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	infraRepo "github.com/sangkips/salon-api/internal/infrastructure/repository"
	"github.com/sangkips/salon-api/internal/presentation/http/dto/response"
)

const (
	// BranchHeader lets a super-admin act on a specific branch
	BranchHeader   = "X-Branch-ID"
	superAdminRole = "super-admin"
)

// BranchMiddleware scopes the request to the branch of the token. A
// super-admin may pick a branch with X-Branch-ID; without one their reads
// span every branch.
func BranchMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		branchID, _ := c.Get("token_branch_id")
		id, _ := branchID.(uuid.UUID)
		superAdmin := hasRole(c, superAdminRole)

		if header := c.GetHeader(BranchHeader); header != "" {
			requested, err := uuid.Parse(header)
			if err != nil {
				response.BadRequest(c, "Invalid branch ID")
				c.Abort()
				return
			}
			if !superAdmin && requested != id {
				response.Forbidden(c, "Access denied to this branch")
				c.Abort()
				return
			}
			id = requested
		}

		ctx := c.Request.Context()
		switch {
		case id != uuid.Nil:
			c.Set("branch_id", id)
			ctx = infraRepo.WithBranch(ctx, id)
		case superAdmin:
			ctx = infraRepo.WithSkipBranchScope(ctx, true)
		default:
			response.Forbidden(c, "Token is not bound to a branch")
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetBranchID retrieves the branch ID from gin context
func GetBranchID(c *gin.Context) uuid.UUID {
	branchID, exists := c.Get("branch_id")
	if !exists {
		return uuid.Nil
	}
	id, ok := branchID.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
