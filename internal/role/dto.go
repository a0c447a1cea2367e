package role

type CreateRoleRequest struct {
	Name string `json:"name"`
}

type RenameRoleRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DeleteRoleRequest struct {
	ID string `json:"id"`
}

type RoleResponse struct {
	Role *Role `json:"role"`
}

type RolesResponse struct {
	Roles []*Role `json:"roles"`
}
