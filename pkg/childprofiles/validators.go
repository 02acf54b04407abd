package childprofiles

type CreateChildProfilePayload struct {
	Name      string  `json:"name" mod:"trim" validate:"required,max=50"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,httpurl"`
}
