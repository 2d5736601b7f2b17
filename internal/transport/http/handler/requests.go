package handler

import "go-gin-gorm-accounts/internal/domain"

type RegisterReq struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8,maxbytes=72"`
	Name     *string `json:"name" binding:"omitnil,min=1,max=100"`
}

type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,maxbytes=72"`
}

type RefreshReq struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type ListUsersReq struct {
	Page     int    `form:"page,default=1" binding:"gte=1"`
	PageSize int    `form:"pageSize,default=10" binding:"gte=1,lte=100"`
	Role     string `form:"role" binding:"omitempty,oneof=USER ADMIN"`
	Search   string `form:"search" binding:"max=100"`
	Sort     string `form:"sort,default=createdAt:desc"`
}

type UpdateMeReq struct {
	Name      domain.Patch[string] `json:"name" binding:"omitnil,min=1,max=100"`
	Bio       domain.Patch[string] `json:"bio" binding:"omitnil,max=500"`
	AvatarURL domain.Patch[string] `json:"avatarUrl" binding:"omitnil,url"`
}

func (r UpdateMeReq) patch() domain.MePatch {
	return domain.MePatch{Name: r.Name, Bio: r.Bio, AvatarURL: r.AvatarURL}
}

type CreateUserReq struct {
	Email     string      `json:"email" binding:"required,email"`
	Password  string      `json:"password" binding:"required,min=8,maxbytes=72"`
	Name      *string     `json:"name" binding:"omitnil,min=1,max=100"`
	Role      domain.Role `json:"role" binding:"omitempty,oneof=USER ADMIN"`
	Bio       *string     `json:"bio" binding:"omitnil,max=500"`
	AvatarURL *string     `json:"avatarUrl" binding:"omitnil,url"`
}

type UpdateUserReq struct {
	Name      domain.Patch[string]      `json:"name" binding:"omitnil,min=1,max=100"`
	Role      domain.Patch[domain.Role] `json:"role" binding:"omitnil,oneof=USER ADMIN"`
	Bio       domain.Patch[string]      `json:"bio" binding:"omitnil,max=500"`
	AvatarURL domain.Patch[string]      `json:"avatarUrl" binding:"omitnil,url"`
}

func (r UpdateUserReq) patch() domain.UserPatch {
	return domain.UserPatch{Name: r.Name, Role: r.Role, Bio: r.Bio, AvatarURL: r.AvatarURL}
}
