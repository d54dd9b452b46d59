package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/hrfocus/erp_backend/config"
	"bitbucket.org/hrfocus/erp_backend/utils"
)

type User struct {
	ID             int       `gorm:"primary_key" json:"id"`
	EmployeeNo     string    `gorm:"size:50;not null;unique" json:"employee_no" binding:"required"`
	Username       string    `gorm:"size:100;not null;uniqueIndex" json:"username" binding:"required"`
	Email          string    `gorm:"size:100" json:"email"`
	Password       string    `gorm:"size:255;not null" json:"-"`
	Name           string    `gorm:"size:100;not null" json:"name" binding:"required"`
	DepartmentName string    `gorm:"size:100" json:"department_name"`
	Role           UserRole  `gorm:"type:enum('ADMIN','USER');default:'USER'" json:"role"`
	Phone          string    `gorm:"size:20" json:"phone"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// ReportPrincipal is the caller identity snapshot handed to the report
// subsystem: id, effective role and the caller's own department.
type ReportPrincipal struct {
	UserId         int
	Role           UserRole
	DepartmentName string
}

func (p *ReportPrincipal) IsAdmin() bool {
	return p != nil && p.Role == UserRoleAdmin
}

func (u *User) Principal() *ReportPrincipal {
	role := UserRoleUser
	if u.IsAdmin() {
		role = UserRoleAdmin
	}
	return &ReportPrincipal{
		UserId:         u.ID,
		Role:           role,
		DepartmentName: u.DepartmentName,
	}
}

// GetUserByUsername resolves a session username to the user row, going
// through the redis cache first like the session middleware does.
func GetUserByUsername(ctx context.Context, username string) (*User, error) {
	if username == "" {
		return nil, errors.New("username is required")
	}

	var user User
	exists, err := config.GetRedisObject("User:"+username, &user)
	if err != nil {
		return nil, err
	}
	if exists {
		return &user, nil
	}

	db := config.GetDB()
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Take(&user).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	// Best-effort cache refresh; sessions re-resolve on every request.
	_ = config.SetRedisObject("User:"+username, &user, 30*time.Minute)

	return &user, nil
}
