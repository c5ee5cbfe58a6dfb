package schema

import "strings"

// UpdateProfile is the decoded body of a profile update.
type UpdateProfile struct {
	FullName  *string `json:"fullName"`
	AvatarURL *string `json:"avatarUrl"`
}

// ProfilePatch is a validated profile update. An empty string clears the
// field.
type ProfilePatch struct {
	FullName  *string `json:"fullName" validate:"omitempty,max=200"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,http_url"`
}

// ValidateProfile trims both fields and rejects empty patches.
func ValidateProfile(in UpdateProfile) (ProfilePatch, error) {
	if in.FullName == nil && in.AvatarURL == nil {
		return ProfilePatch{}, invalid("At least one field (fullName or avatarUrl) must be provided")
	}

	out := ProfilePatch{}
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		out.FullName = &name
	}
	if in.AvatarURL != nil {
		u := strings.TrimSpace(*in.AvatarURL)
		out.AvatarURL = &u
	}
	if err := check(out); err != nil {
		return ProfilePatch{}, err
	}
	return out, nil
}
