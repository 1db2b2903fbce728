package admin

import (
	"errors"

	"github.com/handmade-market/internal/authz"
	"github.com/handmade-market/internal/http/response"

	"github.com/gin-gonic/gin"
)

type authzRolePayload struct {
	Role string `json:"role" binding:"required"`
}

type authzPolicyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type authzSetStaffRolesPayload struct {
	Roles []string `json:"roles"`
}

type authzRoleItem struct {
	Role      string `json:"role"`
	Immutable bool   `json:"immutable"`
}

func respondAuthzError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrImmutableRole):
		respondError(c, response.CodeForbidden, "error.forbidden", nil)
	case errors.Is(err, authz.ErrInvalidInput):
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
	default:
		respondError(c, response.CodeInternal, "error.internal", err)
	}
}

// GetAuthzMe 获取当前员工权限快照
func (h *Handler) GetAuthzMe(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetStaffRoles(staffID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{
		"staff_id": staffID,
		"is_super": isSuperStaff(c),
		"roles":    roles,
	})
}

// ListAuthzRoles 获取角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	items := make([]authzRoleItem, 0, len(roles))
	for _, role := range roles {
		items = append(items, authzRoleItem{Role: role, Immutable: authz.IsImmutableRole(role)})
	}
	response.Success(c, items)
}

// CreateAuthzRole 创建角色
func (h *Handler) CreateAuthzRole(c *gin.Context) {
	var req authzRolePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondAuthzError(c, err)
		return
	}
	requestLog(c).Infow("staff_authz_role_created", "role", role)
	response.Success(c, gin.H{"role": role})
}

// GrantAuthzPolicy 为角色授予策略
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondAuthzError(c, err)
		return
	}
	requestLog(c).Infow("staff_authz_policy_granted",
		"role", req.Role,
		"object", req.Object,
		"action", req.Action,
	)
	response.Success(c, nil)
}

// SetStaffRoles 覆盖员工角色
func (h *Handler) SetStaffRoles(c *gin.Context) {
	staffID, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req authzSetStaffRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthzService.SetStaffRoles(staffID, req.Roles); err != nil {
		respondAuthzError(c, err)
		return
	}
	roles, err := h.AuthzService.GetStaffRoles(staffID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	requestLog(c).Infow("staff_authz_roles_updated", "target_staff_id", staffID, "roles", roles)
	response.Success(c, gin.H{"staff_id": staffID, "roles": roles})
}
