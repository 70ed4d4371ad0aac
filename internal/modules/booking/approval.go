package booking

import "punchin/internal/domain"

// ResolveApproval decides which parties must review a booking. Instant booking needs the
// engineer to opt in, the engineer's studio rule to permit this studio, and the studio to
// auto-approve; each failing condition hands review to the party that owns it.
func ResolveApproval(studio domain.Studio, engineer domain.UserProfile) domain.BookingApprovalState {
	settings := engineer.Engineer

	mainStudioMatches := settings.MainStudioID != "" && settings.MainStudioID == studio.ID
	engineerAllowsStudio := settings.AllowOtherStudios || mainStudioMatches
	canInstantBook := settings.InstantBookEnabled && engineerAllowsStudio && studio.AutoApproveRequests

	return domain.BookingApprovalState{
		RequiresStudioApproval:   !canInstantBook,
		RequiresEngineerApproval: !settings.InstantBookEnabled || !engineerAllowsStudio,
	}
}
