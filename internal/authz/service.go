package authz

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	apiV1Prefix     = "/api/v1"
	casbinTableName = "casbin_rule"
	staffSubjectFmt = "staff:%d"
	rolePrefix      = "role:"
	roleAnchor      = "role:__anchor__"
)

// keyMatch2 支持 /admin/orders/:id 形式的路径参数
const defaultRBACModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub) || r.sub == p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

var (
	// ErrUnavailable 授权服务未初始化
	ErrUnavailable = errors.New("authz service unavailable")
	// ErrInvalidInput 角色、资源或动作参数非法
	ErrInvalidInput = errors.New("invalid authz input")
	// ErrImmutableRole 预置角色的策略不可在运行时修改
	ErrImmutableRole = errors.New("builtin role is immutable")
)

// Policy 权限策略
type Policy struct {
	Subject string `json:"subject"`
	Object  string `json:"object"`
	Action  string `json:"action"`
}

// Service 员工后台接口的 Casbin 授权服务，策略持久化在 casbin_rule 表
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService 创建授权服务
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("authz db is nil")
	}

	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter failed: %w", err)
	}

	m, err := model.NewModelFromString(defaultRBACModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	// 每次增删策略即时写回 adapter
	enforcer.EnableAutoSave(true)

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}

	return &Service{enforcer: enforcer}, nil
}

func (s *Service) ready() error {
	if s == nil || s.enforcer == nil {
		return ErrUnavailable
	}
	return nil
}

// EnforceStaff 按员工 ID 判定授权
func (s *Service) EnforceStaff(staffID uint, obj, act string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	return s.enforcer.Enforce(subjectForStaff(staffID), NormalizeObject(obj), normalizeAction(act))
}

// EnsureRole 确保角色存在，返回带 role: 前缀的规范名称
func (s *Service) EnsureRole(role string) (string, error) {
	normalized, err := normalizeRole(role)
	if err != nil {
		return "", err
	}
	if err := s.ready(); err != nil {
		return "", err
	}
	if normalized == roleAnchor {
		return "", fmt.Errorf("%w: reserved role", ErrInvalidInput)
	}

	exists, err := s.enforcer.HasNamedGroupingPolicy("g", normalized, roleAnchor)
	if err != nil {
		return "", fmt.Errorf("check role failed: %w", err)
	}
	if exists {
		return normalized, nil
	}
	if _, err := s.enforcer.AddNamedGroupingPolicy("g", normalized, roleAnchor); err != nil {
		return "", fmt.Errorf("create role failed: %w", err)
	}
	return normalized, nil
}

// ListRoles 列出全部角色（含预置角色）
func (s *Service) ListRoles() ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetFilteredNamedGroupingPolicy("g", 0)
	if err != nil {
		return nil, fmt.Errorf("list roles failed: %w", err)
	}
	roleSet := make(map[string]struct{})
	for _, rule := range rules {
		for _, value := range rule {
			if isRoleName(value) {
				roleSet[value] = struct{}{}
			}
		}
	}
	roles := make([]string, 0, len(roleSet))
	for role := range roleSet {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles, nil
}

// GrantRolePolicy 为自定义角色授予策略；预置角色返回 ErrImmutableRole
func (s *Service) GrantRolePolicy(role, object, action string) error {
	normalizedRole, err := normalizeRole(role)
	if err != nil {
		return err
	}
	if IsImmutableRole(normalizedRole) {
		return ErrImmutableRole
	}
	normalizedAction := normalizeAction(action)
	if normalizedAction == "" {
		return fmt.Errorf("%w: action is required", ErrInvalidInput)
	}
	if _, err := s.EnsureRole(normalizedRole); err != nil {
		return err
	}
	if _, err := s.enforcer.AddPolicy(normalizedRole, NormalizeObject(object), normalizedAction); err != nil {
		return fmt.Errorf("grant policy failed: %w", err)
	}
	return nil
}

// SetStaffRoles 覆盖设置员工角色，空列表表示撤销全部角色
func (s *Service) SetStaffRoles(staffID uint, roles []string) error {
	if staffID == 0 {
		return fmt.Errorf("%w: staff id is required", ErrInvalidInput)
	}
	if err := s.ready(); err != nil {
		return err
	}
	normalizedRoles := make([]string, 0, len(roles))
	for _, role := range roles {
		normalizedRole, err := s.EnsureRole(role)
		if err != nil {
			return err
		}
		normalizedRoles = append(normalizedRoles, normalizedRole)
	}

	subject := subjectForStaff(staffID)
	if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy("g", 0, subject); err != nil {
		return fmt.Errorf("clear staff roles failed: %w", err)
	}
	for _, role := range normalizedRoles {
		if _, err := s.enforcer.AddNamedGroupingPolicy("g", subject, role); err != nil {
			return fmt.Errorf("assign staff role failed: %w", err)
		}
	}
	return nil
}

// GetStaffRoles 查询员工直接拥有的角色
func (s *Service) GetStaffRoles(staffID uint) ([]string, error) {
	if staffID == 0 {
		return nil, fmt.Errorf("%w: staff id is required", ErrInvalidInput)
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	roles, err := s.enforcer.GetRolesForUser(subjectForStaff(staffID))
	if err != nil {
		return nil, fmt.Errorf("get staff roles failed: %w", err)
	}
	filtered := make([]string, 0, len(roles))
	for _, role := range roles {
		if isRoleName(role) {
			filtered = append(filtered, role)
		}
	}
	sort.Strings(filtered)
	return filtered, nil
}

// IsImmutableRole 判断是否为不可修改的预置角色
func IsImmutableRole(role string) bool {
	normalized, err := normalizeRole(role)
	if err != nil {
		return false
	}
	for _, seed := range builtinRoleSeeds() {
		if seed.Immutable && rolePrefix+seed.Role == normalized {
			return true
		}
	}
	return false
}

func isRoleName(value string) bool {
	return strings.HasPrefix(value, rolePrefix) && value != roleAnchor
}

// subjectForStaff 生成员工主体标识
func subjectForStaff(staffID uint) string {
	return fmt.Sprintf(staffSubjectFmt, staffID)
}

// normalizeRole 统一角色名称：去空白、空格转下划线、补 role: 前缀
func normalizeRole(role string) (string, error) {
	normalized := strings.TrimSpace(role)
	if normalized == "" {
		return "", fmt.Errorf("%w: role is required", ErrInvalidInput)
	}
	normalized = strings.ReplaceAll(normalized, " ", "_")
	if !strings.HasPrefix(normalized, rolePrefix) {
		normalized = rolePrefix + normalized
	}
	if len(normalized) <= len(rolePrefix) {
		return "", fmt.Errorf("%w: role is required", ErrInvalidInput)
	}
	return normalized, nil
}

// NormalizeObject 统一授权资源路径，去掉 /api/v1 前缀
func NormalizeObject(object string) string {
	normalized := strings.TrimSpace(object)
	if normalized == "" {
		return "/"
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	if strings.HasPrefix(normalized, apiV1Prefix+"/") {
		return strings.TrimPrefix(normalized, apiV1Prefix)
	}
	if normalized == apiV1Prefix {
		return "/"
	}
	return normalized
}

// normalizeAction 统一授权动作
func normalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}
