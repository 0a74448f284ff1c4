package models

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Agency{}, &Recruiter{}, &Candidate{}, &UserProfile{},
		&Job{}, &Application{},
		&Interview{}, &InterviewProposal{}, &TimeProposalResponse{},
		&VideoCallRoom{}, &VideoCallParticipant{}, &VideoCallInvitation{},
		&Notification{}, &Offer{}, &EmailCampaign{}, &EmailRecipient{}, &AIContent{},
	}
}
