package dto

import "sandy/internal/usecase"

// ProfileRequest is shared by create, PUT and PATCH. Absent fields stay nil
// and are left untouched on update.
type ProfileRequest struct {
	PhysicalNeeds            *[]string `json:"physical_needs"`
	EnergyLevel              *string   `json:"energy_level" validate:"omitempty,max=64"`
	MainDevice               *string   `json:"main_device" validate:"omitempty,max=64"`
	AccessibilityAdaptations *[]string `json:"accessibility_adaptations"`
	DailyTaskChallenges      *[]string `json:"daily_task_challenges"`
	SendPhotos               *string   `json:"send_photos" validate:"omitempty,max=16"`
	ConditionName            *string   `json:"condition_name" validate:"omitempty,max=255"`
	HelpNeeded               *string   `json:"help_needed"`
	ShareExperiences         *string   `json:"share_experiences" validate:"omitempty,max=16"`
	OtherNeedsSoon           *string   `json:"other_needs_soon"`
	Bio                      *string   `json:"bio"`
	Avatar                   *string   `json:"avatar" validate:"omitempty,max=255"`
	Location                 *string   `json:"location" validate:"omitempty,max=255"`
}

func (r ProfileRequest) Input() usecase.ProfileInput {
	return usecase.ProfileInput{
		PhysicalNeeds:            r.PhysicalNeeds,
		EnergyLevel:              r.EnergyLevel,
		MainDevice:               r.MainDevice,
		AccessibilityAdaptations: r.AccessibilityAdaptations,
		DailyTaskChallenges:      r.DailyTaskChallenges,
		SendPhotos:               r.SendPhotos,
		ConditionName:            r.ConditionName,
		HelpNeeded:               r.HelpNeeded,
		ShareExperiences:         r.ShareExperiences,
		OtherNeedsSoon:           r.OtherNeedsSoon,
		Bio:                      r.Bio,
		Avatar:                   r.Avatar,
		Location:                 r.Location,
	}
}
