// Package userv1 是 UserService 的手工维护 gRPC 绑定（JSON codec，见 fleetv1 说明）。
package userv1

// User 用户信息。时间戳为 Unix 秒，凭据字段不外传。
type User struct {
	Id        string   `json:"id"`
	Username  string   `json:"username"`
	Name      string   `json:"name,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Email     string   `json:"email,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
}

type RegisterUserRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Name     string   `json:"name,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"` // 缺省为 driver
}

type RegisterUserResponse struct {
	User *User `json:"user"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
	User        *User  `json:"user"`
}

type GetProfileRequest struct{}

type GetProfileResponse struct {
	User *User `json:"user"`
}

type ListUsersRequest struct {
	Role     string `json:"role,omitempty"` // 非空时按角色过滤，如 driver
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

type ListUsersResponse struct {
	Users []*User `json:"users"`
	Total int64   `json:"total"`
}
