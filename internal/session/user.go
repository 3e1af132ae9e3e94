// Package session 保存进程级的客户端状态：登录会话与主题偏好
package session

// 本地存储中使用的 key
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyTheme        = "theme"
)

// Role 用户角色
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Privileged 是否可以接收管理端事件（低库存等）
func (r Role) Privileged() bool {
	return r == RoleAdmin
}

// User 当前登录用户
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Phone string `json:"phone,omitempty"`
}

// Status 会话所处的阶段，三者互斥
type Status int

const (
	StatusLoading Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Session 会话快照
type Session struct {
	User            *User
	AccessToken     string
	RefreshToken    string
	IsAuthenticated bool
	IsLoading       bool
}

// Status 根据快照推导阶段
func (s Session) Status() Status {
	switch {
	case s.IsLoading:
		return StatusLoading
	case s.IsAuthenticated:
		return StatusAuthenticated
	default:
		return StatusUnauthenticated
	}
}

// Role 当前角色，未登录时为空
func (s Session) Role() Role {
	if s.User == nil || !s.IsAuthenticated {
		return ""
	}
	return s.User.Role
}

func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
